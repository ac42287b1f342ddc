package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func strPtr(s string) *string { return &s }

func TestAddress_ComposeFullAddress(t *testing.T) {
	tests := []struct {
		name    string
		address Address
		want    string
	}{
		{
			name:    "Minimal components",
			address: Address{AddressLine1: "12 Jalan Ampang", City: "KL", State: "WP"},
			want:    "12 Jalan Ampang, KL, WP",
		},
		{
			name: "All components",
			address: Address{
				UnitNumber:   strPtr("Unit 3A"),
				StreetNumber: strPtr("12"),
				AddressLine1: "Jalan Ampang",
				AddressLine2: strPtr("Ampang Point"),
				City:         "Kuala Lumpur",
				State:        "WP",
				PostalCode:   strPtr("50450"),
			},
			want: "Unit 3A, 12 Jalan Ampang, Ampang Point, Kuala Lumpur, 50450 WP",
		},
		{
			name: "Blank optional components are skipped",
			address: Address{
				UnitNumber:   strPtr("  "),
				AddressLine1: " 5 Lorong Kecil ",
				AddressLine2: strPtr(""),
				City:         "Penang",
				PostalCode:   strPtr("10200"),
			},
			want: "5 Lorong Kecil, Penang, 10200",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.address.ComposeFullAddress())
		})
	}
}

func TestAddress_BeforeSaveOverwritesClientValue(t *testing.T) {
	a := &Address{AddressLine1: "1 Main St", City: "Ipoh", State: "Perak", FullAddress: "forged"}
	assert.NoError(t, a.BeforeSave(nil))
	assert.Equal(t, "1 Main St, Ipoh, Perak", a.FullAddress)
}
