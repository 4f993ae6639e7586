package listsync

import (
	"fmt"
	"net/url"
	"os"

	"github.com/matst80/slask-list/pkg/form"
	"github.com/matst80/slask-list/pkg/types"
	"gopkg.in/yaml.v3"
)

// Options controls how a ListController finds its controls and updates the list.
type Options struct {
	// GettingItemsMessage is shown by the transport loader while a list request runs.
	GettingItemsMessage    string `yaml:"gettingItemsMessage"`
	GettingItemsLoader     bool   `yaml:"gettingItemsLoader"`
	PaginationListSelector string `yaml:"paginationListSelector"`
	SortLinkSelector       string `yaml:"sortLinkSelector"`
	LimitFormSelector      string `yaml:"limitFormSelector"`
	SortFormSelector       string `yaml:"sortFormSelector"`
	// AddHistoryState pushes every fetched list onto the session history. Disable it
	// when the list must not change the address bar, e.g. inside a modal; the filter
	// form then builds its requests from the last served URL instead.
	AddHistoryState bool `yaml:"addHistoryState"`
}

func DefaultOptions() Options {
	return Options{
		GettingItemsLoader:     true,
		PaginationListSelector: "ul.ad-list__pagination",
		SortLinkSelector:       "a.ad-list__sort-link",
		LimitFormSelector:      `form[name="ad-list__limit"]`,
		SortFormSelector:       `form[name="ad-list__sort"]`,
		AddHistoryState:        true,
	}
}

// FilterFormConfig is the immutable configuration of a FilterForm.
type FilterFormConfig struct {
	FilterButtonSelector string `yaml:"filterButtonSelector"`
	ResetButtonSelector  string `yaml:"resetButtonSelector"`
	// ResetData holds the values written on reset; fields missing here are cleared.
	ResetData     url.Values `yaml:"resetData"`
	NoResetFields []string   `yaml:"noResetFields"`
	// FilterAfterReset filters the list right after a reset.
	FilterAfterReset bool `yaml:"filterAfterReset"`
	// ResetSorting drops the sort parameter when filtering. The embedded input
	// list__filter-form__reset-sorting[<form name>] overrides it.
	ResetSorting bool `yaml:"resetSorting"`
}

func DefaultFilterFormConfig() FilterFormConfig {
	return FilterFormConfig{
		FilterButtonSelector: `button[type="submit"]`,
		ResetButtonSelector:  `button[type="reset"]`,
		ResetData:            url.Values{},
		FilterAfterReset:     true,
		ResetSorting:         true,
	}
}

// SetResetData encodes a struct with schema tags as reset data.
func (c *FilterFormConfig) SetResetData(v any) error {
	data, err := form.EncodeData(v)
	if err != nil {
		return fmt.Errorf("invalid reset data: %w", err)
	}
	c.ResetData = data
	return nil
}

// Config is the file form of a list region setup.
type Config struct {
	Container           string                     `yaml:"container"`
	FilterForm          string                     `yaml:"filterForm"`
	QueryParameterNames *types.QueryParameterNames `yaml:"queryParameterNames"`
	List                Options                    `yaml:"list"`
	Filter              FilterFormConfig           `yaml:"filter"`
}

func DefaultConfig() Config {
	return Config{
		Container: "#list",
		List:      DefaultOptions(),
		Filter:    DefaultFilterFormConfig(),
	}
}

// LoadConfig reads a YAML file over the defaults.
func LoadConfig(path string) (Config, error) {
	cfg := DefaultConfig()
	data, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return cfg, fmt.Errorf("invalid list config %s: %w", path, err)
	}
	return cfg, nil
}
