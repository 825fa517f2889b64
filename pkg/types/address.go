package types

import "strings"

// Address is the structured shipping destination captured on orders and saved
// in the address book.
type Address struct {
	Name   string `json:"name" gorm:"column:name"`
	Street string `json:"street" gorm:"column:street"`
	City   string `json:"city" gorm:"column:city"`
	State  string `json:"state" gorm:"column:state"`
	Zip    string `json:"zip" gorm:"column:zip"`
}

// Normalized returns a copy with surrounding whitespace removed from every field.
func (a Address) Normalized() Address {
	return Address{
		Name:   strings.TrimSpace(a.Name),
		Street: strings.TrimSpace(a.Street),
		City:   strings.TrimSpace(a.City),
		State:  strings.TrimSpace(a.State),
		Zip:    strings.TrimSpace(a.Zip),
	}
}

// CityState renders the "City, ST" label used for delivery milestones.
func (a Address) CityState() string {
	return a.City + ", " + a.State
}
