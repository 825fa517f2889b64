package enums

import "slices"

// RegistryType is the occasion a gift registry is kept for.
type RegistryType string

const (
	RegistryTypeWedding     RegistryType = "wedding"
	RegistryTypeBaby        RegistryType = "baby"
	RegistryTypeBirthday    RegistryType = "birthday"
	RegistryTypeAnniversary RegistryType = "anniversary"
	RegistryTypeHoliday     RegistryType = "holiday"
)

var validRegistryTypes = []RegistryType{
	RegistryTypeWedding,
	RegistryTypeBaby,
	RegistryTypeBirthday,
	RegistryTypeAnniversary,
	RegistryTypeHoliday,
}

// IsValid reports whether the value is a known RegistryType.
func (t RegistryType) IsValid() bool {
	return slices.Contains(validRegistryTypes, t)
}

// RegistryStatus tracks whether a registry is still shared.
type RegistryStatus string

const (
	RegistryStatusActive RegistryStatus = "active"
	RegistryStatusClosed RegistryStatus = "closed"
)

// IsValid reports whether the value is a known RegistryStatus.
func (s RegistryStatus) IsValid() bool {
	return s == RegistryStatusActive || s == RegistryStatusClosed
}
