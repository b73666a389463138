package clusters

import (
	"github.com/mesh-intelligence/clusters/pkg/types"
)

// ItemEditor opens drafts for creating and editing items.
type ItemEditor struct {
	store types.Store
}

// NewItemEditor returns an ItemEditor over an attached store.
func NewItemEditor(store types.Store) *ItemEditor {
	return &ItemEditor{store: store}
}

// ItemDraft holds one item's values while they are edited. It always has an
// entry for every current field, empty when unset. Values stored under names
// no current field carries are kept and saved back unchanged.
type ItemDraft struct {
	store     types.Store
	clusterID string
	item      *types.Item // nil until the draft is saved for the first time
	fields    []*types.FieldDefinition
	values    types.FieldValues
}

// OpenForCreate starts a draft for a new item in the cluster.
// Returns ErrNotFound when the cluster does not exist.
func (e *ItemEditor) OpenForCreate(clusterID string) (*ItemDraft, error) {
	if _, err := getCluster(e.store, clusterID); err != nil {
		return nil, storageErr("open item", err)
	}
	return e.open(clusterID, nil, types.FieldValues{})
}

// OpenForEdit starts a draft over an existing item's stored values.
// Returns ErrNotFound when the item does not exist.
func (e *ItemEditor) OpenForEdit(itemID string) (*ItemDraft, error) {
	item, err := getItem(e.store, itemID)
	if err != nil {
		return nil, storageErr("open item", err)
	}
	return e.open(item.ClusterID, item, item.FieldValues())
}

func (e *ItemEditor) open(clusterID string, item *types.Item, values types.FieldValues) (*ItemDraft, error) {
	defs, err := fetchFields(e.store, clusterID)
	if err != nil {
		return nil, storageErr("open item", err)
	}
	values.EnsureFields(types.FieldNames(defs))
	return &ItemDraft{
		store:     e.store,
		clusterID: clusterID,
		item:      item,
		fields:    defs,
		values:    values,
	}, nil
}

// ClusterID returns the owning cluster.
func (d *ItemDraft) ClusterID() string { return d.clusterID }

// ItemID returns the item being edited, or "" for a draft not saved yet.
func (d *ItemDraft) ItemID() string {
	if d.item == nil {
		return ""
	}
	return d.item.ItemID
}

// IsNew reports whether Save will create a new item.
func (d *ItemDraft) IsNew() bool { return d.item == nil }

// Fields returns the cluster's current fields in order.
func (d *ItemDraft) Fields() []*types.FieldDefinition {
	return append([]*types.FieldDefinition(nil), d.fields...)
}

// Value returns the draft's value for name, "" when unset.
func (d *ItemDraft) Value(name string) string {
	return d.values[name]
}

// Values returns a copy of every entry in the draft, archived ones included.
func (d *ItemDraft) Values() types.FieldValues {
	return d.values.Clone()
}

// SetValue sets the value of a current field. Archived names cannot be set;
// they return ErrFieldNotFound like any other unknown name.
func (d *ItemDraft) SetValue(name, value string) error {
	for _, fd := range d.fields {
		if fd.FieldName == name {
			d.values[name] = value
			return nil
		}
	}
	return types.ErrFieldNotFound
}

// Validate requires at least one non-blank value.
func (d *ItemDraft) Validate() error {
	if !d.values.HasContent() {
		return types.ErrEmptyItem
	}
	return nil
}

// Save trims every value and writes the whole mapping. The first Save of a
// create draft inserts the item; later saves overwrite it in place.
func (d *ItemDraft) Save() (*types.Item, error) {
	if err := d.Validate(); err != nil {
		return nil, err
	}

	trimmed := d.values.Trimmed()
	var item types.Item
	if d.item != nil {
		item = *d.item
	} else {
		item.ClusterID = d.clusterID
	}
	if err := item.SetFieldValues(trimmed); err != nil {
		return nil, storageErr("save item", err)
	}

	err := d.store.Update(func(tx types.Tx) error {
		it, err := tx.GetTable(types.ItemsTable)
		if err != nil {
			return err
		}
		_, err = it.Set(item.ItemID, &item)
		return err
	})
	if err != nil {
		return nil, storageErr("save item", err)
	}

	d.item = &item
	d.values = trimmed
	saved := item
	return &saved, nil
}
