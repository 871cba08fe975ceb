package permissions_test

import (
	"rms/permissions"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGet(t *testing.T) {
	data := permissions.Get()
	require.NotNil(t, data)

	capacity, ok := data.FindPermissions("/v1/restaurants/{restaurant_id}/capacity", "GET")
	require.True(t, ok)
	assert.True(t, capacity.Allows("manager"))
	assert.False(t, capacity.Allows("host"))

	join, ok := data.FindPermissions("/v1/restaurants/{restaurant_id}/waitlist/", "post")
	require.True(t, ok)
	assert.True(t, join.Allows("host"))

	_, ok = data.FindPermissions("/v1/restaurants/{restaurant_id}/tables", "GET")
	assert.False(t, ok)
}

func TestParse(t *testing.T) {
	data, err := permissions.Parse([]byte(`{"endpoints":[{"path":"/v1/ping","method":"GET","skip":true}]}`))
	require.NoError(t, err)

	ping, ok := data.FindPermissions("/v1/ping", "GET")
	require.True(t, ok)
	assert.True(t, ping.Allows(""))

	_, err = permissions.Parse([]byte(`{"endpoints":[{"path":"/a","method":"GET"},{"path":"/a","method":"get"}]}`))
	assert.ErrorContains(t, err, "duplicate")

	_, err = permissions.Parse([]byte(`{`))
	assert.Error(t, err)
}
