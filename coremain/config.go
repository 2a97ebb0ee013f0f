package coremain

import (
	"github.com/pmkol/sllist/mlog"
	"github.com/pmkol/sllist/pkg/script"
)

type Config struct {
	Log     mlog.LogConfig `yaml:"log"`
	Include []string       `yaml:"include"`

	// Element is the value type of the list: "int" (default), "float" or "string".
	Element string `yaml:"element"`

	// Steps of included files run before these.
	Steps []script.Step `yaml:"steps"`
}
