package config

// DefaultYAML defines the containers used by the demo console when no
// definition file is given.
const DefaultYAML = `stores:
  - name: counter
    state:
      count: 0
      foo: 10
  - name: mounter
    state:
      display: false
      data: []
values:
  - name: text
    value: "The text will sync together"
`

// Default returns the parsed DefaultYAML.
func Default() *Config {
	cfg, err := Parse([]byte(DefaultYAML))
	if err != nil {
		panic("config: invalid DefaultYAML: " + err.Error())
	}
	return cfg
}
