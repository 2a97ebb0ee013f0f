package script

// Step is one list operation in a script.
type Step struct {
	// Op, required. See ops.go for the supported names.
	Op string `yaml:"op"`

	// Value is the argument of value ops like add_last or delete.
	// It is converted to the script's element type. Other ops reject it.
	Value interface{} `yaml:"value"`

	// Index is the argument of get_at_index, find_nth_from_end
	// and create_cycle_at. Other ops reject it.
	Index *int `yaml:"index"`

	// Expect is an optional govaluate expression checked against
	// the step result. See expect.go for the parameters.
	Expect string `yaml:"expect"`
}

type Result struct {
	Step   int         `yaml:"step"`
	Op     string      `yaml:"op"`
	Value  interface{} `yaml:"value,omitempty"`
	OK     bool        `yaml:"ok"`
	Text   string      `yaml:"text,omitempty"`
	Len    int         `yaml:"len"`
	Cycle  bool        `yaml:"cycle,omitempty"`
	Expect string      `yaml:"expect,omitempty"`
	Passed bool        `yaml:"passed"`
	Reason string      `yaml:"reason,omitempty"`
}

type Report struct {
	Element string   `yaml:"element"`
	Steps   []Result `yaml:"steps"`
	Failed  int      `yaml:"failed"`

	// Final is the list rendering after the last step.
	// Empty if the list ended up cyclic.
	Final string `yaml:"final"`
}
