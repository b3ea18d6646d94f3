package schemafile

// The document types mirror the schema vocabulary one to one. Struct tags
// cover all three formats; embedded structs are inlined by each decoder.

type document struct {
	scopeDef  `yaml:",inline"`
	Contracts []contractDef `yaml:"contracts" toml:"contracts" json:"contracts"`
}

type scopeDef struct {
	Types  []typeDef        `yaml:"types" toml:"types" json:"types"`
	Unions []unionDef       `yaml:"unions" toml:"unions" json:"unions"`
	Enums  map[string][]any `yaml:"enums" toml:"enums" json:"enums"`
}

type contractDef struct {
	Name     string `yaml:"name" toml:"name" json:"name"`
	scopeDef `yaml:",inline"`
	Actions  []actionDef `yaml:"actions" toml:"actions" json:"actions"`
}

type actionDef struct {
	Name     string `yaml:"name" toml:"name" json:"name"`
	scopeDef `yaml:",inline"`
	Request  *shapeDef `yaml:"request" toml:"request" json:"request"`
	Response *shapeDef `yaml:"response" toml:"response" json:"response"`
}

type shapeDef struct {
	scopeDef `yaml:",inline"`
	Fields   []fieldDef `yaml:"fields" toml:"fields" json:"fields"`
}

type typeDef struct {
	Name   string     `yaml:"name" toml:"name" json:"name"`
	Fields []fieldDef `yaml:"fields" toml:"fields" json:"fields"`
}

type unionDef struct {
	Name          string       `yaml:"name" toml:"name" json:"name"`
	Discriminator string       `yaml:"discriminator" toml:"discriminator" json:"discriminator"`
	Variants      []variantDef `yaml:"variants" toml:"variants" json:"variants"`
}

type variantDef struct {
	Tag      string `yaml:"tag" toml:"tag" json:"tag"`
	fieldDef `yaml:",inline"`
}

type fieldDef struct {
	Name     string            `yaml:"name" toml:"name" json:"name"`
	Type     string            `yaml:"type" toml:"type" json:"type"`
	Optional bool              `yaml:"optional" toml:"optional" json:"optional"`
	Nullable bool              `yaml:"nullable" toml:"nullable" json:"nullable"`
	Default  any               `yaml:"default" toml:"default" json:"default"`
	Enum     []any             `yaml:"enum" toml:"enum" json:"enum"`
	EnumRef  string            `yaml:"enum_ref" toml:"enum_ref" json:"enum_ref"`
	Min      *float64          `yaml:"min" toml:"min" json:"min"`
	Max      *float64          `yaml:"max" toml:"max" json:"max"`
	As       string            `yaml:"as" toml:"as" json:"as"`
	Value    any               `yaml:"value" toml:"value" json:"value"`
	Codec    string            `yaml:"codec" toml:"codec" json:"codec"`
	Details  map[string]string `yaml:"details" toml:"details" json:"details"`
	Fields   []fieldDef        `yaml:"fields" toml:"fields" json:"fields"`
	Items    *fieldDef         `yaml:"items" toml:"items" json:"items"`
	Union    *unionDef         `yaml:"union" toml:"union" json:"union"`
}
