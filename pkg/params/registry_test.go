package params

import (
	"testing"

	"github.com/matst80/slask-list/pkg/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type mapSource map[string]string

func (m mapSource) InputValue(name string) (string, bool) {
	v, ok := m[name]
	return v, ok
}

func TestSetTwiceIsConfigurationError(t *testing.T) {
	cases := []types.QueryParameterNames{
		{Page: "page", Sort: "sort", Limit: "limit"},
		{Page: "p", Sort: "s", Limit: "l"},
	}
	for _, names := range cases {
		r := NewRegistry(nil)
		require.NoError(t, r.Set(names))
		err := r.Set(names)
		assert.True(t, types.IsConfigurationError(err))
		err = r.SetNames("a", "b", "c")
		assert.True(t, types.IsConfigurationError(err))

		got, err := r.Get()
		require.NoError(t, err)
		assert.Equal(t, names, got)
	}
}

func TestMissingKeysIsValidationError(t *testing.T) {
	cases := []map[string]string{
		{"sort": "s", "limit": "l"},
		{"page": "p", "limit": "l"},
		{"page": "p", "sort": "s"},
		{"page": "", "sort": "s", "limit": "l"},
		{},
	}
	for _, names := range cases {
		r := NewRegistry(nil)
		err := r.SetMap(names)
		assert.True(t, types.IsValidationError(err), "%v", names)
		assert.False(t, r.IsSet())
	}
	r := NewRegistry(nil)
	assert.True(t, types.IsValidationError(r.SetNames("page", "", "limit")))
}

func TestGetParsesEmbeddedConfiguration(t *testing.T) {
	r := NewRegistry(mapSource{NamesInput: `{"page":"p","sort":"s","limit":"l"}`})
	names, err := r.Get()
	require.NoError(t, err)
	assert.Equal(t, types.QueryParameterNames{Page: "p", Sort: "s", Limit: "l"}, names)

	// lazily set names count as a registration
	assert.True(t, types.IsConfigurationError(r.SetNames("a", "b", "c")))
}

func TestGetWithoutConfiguration(t *testing.T) {
	r := NewRegistry(mapSource{})
	_, err := r.Get()
	assert.True(t, types.IsValidationError(err))
	assert.ErrorIs(t, err, ErrNamesNotSet)
	assert.True(t, types.IsConfigurationError(err))

	_, err = NewRegistry(nil).Get()
	assert.ErrorIs(t, err, ErrNamesNotSet)
}

func TestGetInvalidConfiguration(t *testing.T) {
	cases := map[string]string{
		"not json":    `{page:`,
		"not object":  `["page","sort","limit"]`,
		"missing key": `{"page":"p","sort":"s"}`,
		"not string":  `{"page":1,"sort":"s","limit":"l"}`,
	}
	for name, raw := range cases {
		t.Run(name, func(t *testing.T) {
			r := NewRegistry(mapSource{NamesInput: raw})
			_, err := r.Get()
			require.Error(t, err)
			assert.True(t, types.IsValidationError(err))
			assert.Contains(t, err.Error(), NamesInput)
			assert.False(t, r.IsSet())
		})
	}
}

func TestLoad(t *testing.T) {
	r := NewRegistry(mapSource{})
	require.NoError(t, r.Load())
	assert.False(t, r.IsSet())

	r = NewRegistry(mapSource{NamesInput: `{"page":"p","sort":"s","limit":"l"}`})
	require.NoError(t, r.Load())
	assert.True(t, r.IsSet())
	require.NoError(t, r.Load())
}

func TestNewRegistryWithNames(t *testing.T) {
	_, err := NewRegistryWithNames(types.QueryParameterNames{Page: "p"})
	assert.True(t, types.IsValidationError(err))

	r, err := NewRegistryWithNames(types.QueryParameterNames{Page: "p", Sort: "s", Limit: "l"})
	require.NoError(t, err)
	assert.True(t, r.IsSet())
}
