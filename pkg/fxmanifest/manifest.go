package fxmanifest

// FileName is the name of the manifest script at the project root
const FileName = "fxmanifest.lua"

// Directives recognized by the Builder
const (
	DirectiveUIPage = "ui_page"
	DirectiveIgnore = "vx_ignore"
)

// DefaultIgnoredPaths are excluded from every archive
var DefaultIgnoredPaths = []string{
	".git/**",
	".vscode/**",
	".gitattributes",
}

// DocumentationPaths are additionally excluded when Options.IgnoreDocs is set
var DocumentationPaths = []string{
	"README",
	"README.md",
	"LICENSE",
}

// Options controls the default state of a Manifest
type Options struct {
	IgnoreDocs bool
}

// Manifest contains everything the packer needs to know about a project
type Manifest struct {
	// IgnoredPaths holds glob patterns; each one matches at any directory depth
	IgnoredPaths []string `yaml:"ignored_paths"`
	UIPage       string   `yaml:"ui_page,omitempty"`
	HasUIPage    bool     `yaml:"-"`
}

// New returns the default manifest
func New(opts Options) Manifest {
	size := len(DefaultIgnoredPaths)
	if opts.IgnoreDocs {
		size += len(DocumentationPaths)
	}

	ignored := make([]string, 0, size)
	ignored = append(ignored, DefaultIgnoredPaths...)
	if opts.IgnoreDocs {
		ignored = append(ignored, DocumentationPaths...)
	}

	return Manifest{IgnoredPaths: ignored}
}

// Clone returns a deep copy
func (m Manifest) Clone() Manifest {
	clone := m
	clone.IgnoredPaths = append([]string(nil), m.IgnoredPaths...)
	return clone
}
