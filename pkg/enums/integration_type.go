package enums

import "fmt"

// IntegrationType names the external storefronts that may push orders in.
type IntegrationType string

const (
	IntegrationTypeEasyOrders IntegrationType = "easyorders"
)

// IsValid reports whether the value is a known IntegrationType.
func (t IntegrationType) IsValid() bool {
	return t == IntegrationTypeEasyOrders
}

// ParseIntegrationType converts raw input into an IntegrationType.
func ParseIntegrationType(value string) (IntegrationType, error) {
	if IntegrationType(value) == IntegrationTypeEasyOrders {
		return IntegrationTypeEasyOrders, nil
	}
	return "", fmt.Errorf("invalid integration type %q", value)
}
