package types

// Standard table names for Store.GetTable.
const (
	ClustersTable         = "clusters"
	FieldDefinitionsTable = "field_definitions"
	ItemsTable            = "items"
)

// StandardTableNames lists all standard table names for enumeration.
var StandardTableNames = []string{
	ClustersTable,
	FieldDefinitionsTable,
	ItemsTable,
}
