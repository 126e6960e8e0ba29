package renderer

// TemplateName represents a known template filename.
type TemplateName string

// Constants for known template filenames.
const (
	TplInfo TemplateName = "info.txt.tmpl"
)

// OutputValue is one resolved construct output.
type OutputValue struct {
	Name      string
	Value     string
	Published bool
}

// ConstructInfo groups the outputs of one construct.
type ConstructInfo struct {
	ID      string
	Type    string
	Outputs []OutputValue // sorted by Name
}

// InfoData holds the data required by the TplInfo template.
type InfoData struct {
	Service    string
	Stack      string
	Constructs []ConstructInfo // sorted by ID
}
