package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOperatingHours_Validate(t *testing.T) {
	assert.NoError(t, OperatingHours{"monday": "10:00-18:00", "sunday": "closed"}.Validate())
	assert.NoError(t, OperatingHours(nil).Validate())
	assert.Error(t, OperatingHours{"funday": "all day"}.Validate())
	assert.Error(t, OperatingHours{"Monday": "10:00-18:00"}.Validate())
}

func TestOperatingHours_ValueAndScan(t *testing.T) {
	hours := OperatingHours{"saturday": "09:00-13:00"}

	v, err := hours.Value()
	require.NoError(t, err)
	assert.JSONEq(t, `{"saturday":"09:00-13:00"}`, v.(string))

	var fromString OperatingHours
	require.NoError(t, fromString.Scan(v))
	assert.Equal(t, hours, fromString)

	var fromBytes OperatingHours
	require.NoError(t, fromBytes.Scan([]byte(`{"friday":"late"}`)))
	assert.Equal(t, "late", fromBytes["friday"])

	var empty OperatingHours
	require.NoError(t, empty.Scan(nil))
	assert.Nil(t, empty)

	nilValue, err := OperatingHours(nil).Value()
	require.NoError(t, err)
	assert.Nil(t, nilValue)

	assert.Error(t, empty.Scan(42))
}

func TestStore_AfterFindSetsUsername(t *testing.T) {
	s := &Store{Contributor: &User{Username: "thrifter"}}
	require.NoError(t, s.AfterFind(nil))
	require.NotNil(t, s.AddedByUsername)
	assert.Equal(t, "thrifter", *s.AddedByUsername)

	orphan := &Store{}
	require.NoError(t, orphan.AfterFind(nil))
	assert.Nil(t, orphan.AddedByUsername)
}
