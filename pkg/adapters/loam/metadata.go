package loam

// DocumentMetadata is the frontmatter of a strata document file.
// Nodes are kept raw so that both YAML and JSON sources decode through the same
// mapstructure path, including nested children.
type DocumentMetadata struct {
	ID    string `json:"id" mapstructure:"id"`
	Title string `json:"title" mapstructure:"title"`
	// Nodes are the children of the document root, in stacking order.
	Nodes []any `json:"nodes" mapstructure:"nodes"`
}

// LoaderNode is one entry of the nodes list. Bounds accept either the
// {x,y,w,h} map or a four element list.
type LoaderNode struct {
	ID       string         `mapstructure:"id"`
	Kind     string         `mapstructure:"kind"`
	Name     string         `mapstructure:"name"`
	Bounds   any            `mapstructure:"bounds"`
	Style    map[string]any `mapstructure:"style"`
	Source   string         `mapstructure:"source"`
	Content  string         `mapstructure:"content"`
	Children []any          `mapstructure:"children"`
}
