package importer

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/thriftmap/thriftmap-backend/internal/app/repository"
	"github.com/thriftmap/thriftmap-backend/internal/app/service"
	"github.com/thriftmap/thriftmap-backend/internal/db"
	"github.com/thriftmap/thriftmap-backend/pkg/qrcode"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows [][]interface{}) *strings.Reader {
	f := excelize.NewFile()
	defer f.Close()

	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cellRef, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cellRef, &row))
	}

	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return strings.NewReader(buf.String())
}

func TestReadXLSX(t *testing.T) {
	header := []interface{}{"Name", "Address_Line_1", "City", "State", "Latitude", "Longitude", "Price_Range", "Monday", "Instagram_Link"}
	r := buildWorkbook(t, [][]interface{}{
		header,
		{"Denim Den", "Jalan Bukit Bintang", "Kuala Lumpur", "WP", 3.1466, 101.7101, 2, "10am-8pm", "https://instagram.com/denimden"},
		{"Book Nook", "Lebuh Chulia", "George Town", "Penang", 5.4164, 100.3327},
		{"", "Nowhere", "Ipoh", "Perak", 4.59, 101.09},
		{"Broken Coords", "Jalan X", "Ipoh", "Perak", "north", 101.09},
		{"Denim Den", "Jalan Bukit Bintang", "Kuala Lumpur", "WP", 3.1466, 101.7101},
	})

	result, err := ReadXLSX(r)
	require.NoError(t, err)
	require.Len(t, result.Stores, 2)

	den := result.Stores[0]
	assert.Equal(t, "Denim Den", den.Name)
	assert.Equal(t, "Kuala Lumpur", den.Address.City)
	require.NotNil(t, den.Address.Latitude)
	assert.InDelta(t, 3.1466, *den.Address.Latitude, 1e-9)
	require.NotNil(t, den.PriceRange)
	assert.Equal(t, 2, *den.PriceRange)
	assert.Equal(t, "10am-8pm", den.OperatingHours["monday"])
	require.NotNil(t, den.Contact)
	assert.Equal(t, "https://instagram.com/denimden", *den.Contact.InstagramLink)

	nook := result.Stores[1]
	assert.Nil(t, nook.PriceRange)
	assert.Nil(t, nook.OperatingHours)
	assert.Nil(t, nook.Contact)

	require.Len(t, result.Skipped, 3)
	assert.Equal(t, Skip{Line: 4, Reason: "missing name"}, result.Skipped[0])
	assert.Equal(t, Skip{Line: 5, Reason: "invalid coordinates"}, result.Skipped[1])
	assert.Equal(t, Skip{Line: 6, Reason: "duplicate row"}, result.Skipped[2])
}

func TestReadXLSX_MissingColumn(t *testing.T) {
	r := buildWorkbook(t, [][]interface{}{{"Name", "City"}, {"A", "B"}})

	_, err := ReadXLSX(r)
	assert.ErrorContains(t, err, "address_line_1")
}

const sampleYAML = `
stores:
  - name: Retro Rack
    price_range: 3
    operating_hours:
      saturday: 9am-1pm
    address:
      street_number: "88"
      address_line_1: Jalan Sultan
      city: Kuala Lumpur
      state: WP
      latitude: 3.1434
      longitude: 101.6975
    contact:
      phone_number: "+60 3-1234 5678"
  - name: Island Finds
    address:
      address_line_1: Jalan Penang
      city: George Town
      state: Penang
      latitude: 5.4190
      longitude: 100.3300
`

func TestReadYAML(t *testing.T) {
	result, err := ReadYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)
	require.Len(t, result.Stores, 2)

	rack := result.Stores[0]
	assert.Equal(t, "Retro Rack", rack.Name)
	assert.Equal(t, "88", *rack.Address.StreetNumber)
	assert.Equal(t, "9am-1pm", rack.OperatingHours["saturday"])
	assert.Equal(t, "+60 3-1234 5678", *rack.Contact.PhoneNumber)
	assert.Nil(t, result.Stores[1].Contact)
}

func TestReadYAML_RejectsUnknownFields(t *testing.T) {
	_, err := ReadYAML(strings.NewReader("stores:\n  - name: X\n    owner: me\n"))
	assert.Error(t, err)
}

func TestImport(t *testing.T) {
	testDB, err := db.SetupTestDB()
	require.NoError(t, err)
	t.Cleanup(func() {
		db.CleanupTestDB(testDB)
	})
	stores := service.NewStoreService(repository.NewStoreRepository(testDB), qrcode.NewGenerator(0, ""), "")

	result, err := ReadYAML(strings.NewReader(sampleYAML))
	require.NoError(t, err)

	invalid := result.Stores[1]
	invalid.Name = "Bad Hours"
	invalid.OperatingHours = map[string]string{"someday": "never"}
	inputs := append(result.Stores, invalid)

	summary, err := Import(context.Background(), stores, inputs)
	require.NoError(t, err)
	assert.Equal(t, Summary{Created: 2, Rejected: 1}, summary)

	listed, err := stores.ListStores(context.Background(), service.StoreListOptions{})
	require.NoError(t, err)
	assert.Len(t, listed, 2)
}
