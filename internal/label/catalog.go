package label

// CatalogEntry is one selectable label type as presented to the host UI.
// Selecting an entry arms the placement engine with its type, color and
// icon.
type CatalogEntry struct {
	ID    int    `json:"id"`
	Name  string `json:"name"`
	Type  Type   `json:"type"`
	Color string `json:"color"`
	Icon  string `json:"icon"`
}

var catalog = []CatalogEntry{
	{ID: 1, Name: "Signature", Type: TypeSignature, Color: "#EDB5B5", Icon: "✍️"},
	{ID: 2, Name: "Date", Type: TypeDate, Color: "#B5EDCC", Icon: "📆"},
	{ID: 3, Name: "Name", Type: TypeName, Color: "#B5C8ED", Icon: "👤"},
	{ID: 4, Name: "Initial", Type: TypeInitial, Color: "#EDD5B5", Icon: "🖋️"},
	{ID: 5, Name: "Address", Type: TypeAddress, Color: "#D5B5ED", Icon: "🏠"},
	{ID: 6, Name: "Email", Type: TypeEmail, Color: "#B5EDE2", Icon: "📧"},
	{ID: 7, Name: "Phone", Type: TypePhone, Color: "#E2B5ED", Icon: "📱"},
	{ID: 8, Name: "Company", Type: TypeCompany, Color: "#EDB5C8", Icon: "🏢"},
}

// Catalog returns the ordered list of label types offered to the user.
func Catalog() []CatalogEntry {
	out := make([]CatalogEntry, len(catalog))
	copy(out, catalog)
	return out
}

// CatalogEntryByType looks up a catalog entry by field type.
func CatalogEntryByType(t Type) (CatalogEntry, bool) {
	for _, e := range catalog {
		if e.Type == t {
			return e, true
		}
	}
	return CatalogEntry{}, false
}

// CatalogEntryByName looks up a catalog entry by its display name.
func CatalogEntryByName(name string) (CatalogEntry, bool) {
	for _, e := range catalog {
		if e.Name == name {
			return e, true
		}
	}
	return CatalogEntry{}, false
}
