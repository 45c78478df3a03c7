package hostbind

// ManifestVersion is the format version written to Manifest.Version.
const ManifestVersion = 1

// Manifest is a serializable description of a set of namespaces, for runtime
// loaders and tooling that cannot link the generated code.
type Manifest struct {
	Version    int                 `json:"version"`
	Namespaces []NamespaceManifest `json:"namespaces"`
}

// NamespaceManifest describes one namespace.
type NamespaceManifest struct {
	Name        string            `json:"name"`
	Description string            `json:"description,omitempty"`
	Bindings    []BindingManifest `json:"bindings"`
}

// BindingManifest describes the structural key of one binding.
type BindingManifest struct {
	Name             string         `json:"name"`
	Description      string         `json:"description,omitempty"`
	ReturnType       TypeDescriptor `json:"returnType"`
	PositionalParams Params         `json:"positionalParams"`
	NamedParams      Params         `json:"namedParams"`
	Permissions      []string       `json:"permissions,omitempty"`
}

// NewManifest describes the given namespaces in order.
func NewManifest(namespaces ...Namespace) *Manifest {
	m := &Manifest{
		Version:    ManifestVersion,
		Namespaces: make([]NamespaceManifest, 0, len(namespaces)),
	}
	for _, ns := range namespaces {
		m.Namespaces = append(m.Namespaces, DescribeNamespace(ns.Name(), ns.Description(), ns.Bindings()))
	}
	return m
}

// DescribeNamespace builds the manifest entry for a namespace.
func DescribeNamespace(name, description string, bindings []MethodBinding) NamespaceManifest {
	nm := NamespaceManifest{
		Name:        name,
		Description: description,
		Bindings:    make([]BindingManifest, 0, len(bindings)),
	}
	for _, b := range bindings {
		nm.Bindings = append(nm.Bindings, DescribeBinding(b))
	}
	return nm
}

// DescribeBinding builds the manifest entry for a binding.
func DescribeBinding(b MethodBinding) BindingManifest {
	bm := BindingManifest{
		Name:             b.Name,
		Description:      b.Description,
		ReturnType:       b.ReturnType,
		PositionalParams: b.PositionalParams,
		NamedParams:      b.NamedParams,
	}
	if bm.PositionalParams == nil {
		bm.PositionalParams = Params{}
	}
	if bm.NamedParams == nil {
		bm.NamedParams = Params{}
	}
	for _, p := range b.Permissions {
		bm.Permissions = append(bm.Permissions, p.Text)
	}
	return bm
}

// JSON encodes the manifest as indented JSON with a trailing newline.
func (m *Manifest) JSON() ([]byte, error) {
	data, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}
