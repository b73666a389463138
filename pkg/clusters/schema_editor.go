package clusters

import (
	"github.com/mesh-intelligence/clusters/pkg/types"
)

// SchemaEditor opens edit sessions on a cluster's schema. Keeping a single
// session per cluster open is up to the caller.
type SchemaEditor struct {
	store types.Store
}

// NewSchemaEditor returns a SchemaEditor over an attached store.
func NewSchemaEditor(store types.Store) *SchemaEditor {
	return &SchemaEditor{store: store}
}

// DraftField is one staged field of a SchemaDraft.
type DraftField struct {
	ID           int    // Session-local handle used by the draft's methods.
	ExistingID   string // FieldID of the persisted field; "" for fields added in this session.
	Name         string // Current, possibly edited, name.
	Order        int    // Current position; always 0..n-1 across the draft.
	OriginalName string // Name at session start; "" for fields added in this session.
}

// IsNew reports whether the field was added in this session.
func (f DraftField) IsNew() bool {
	return f.ExistingID == ""
}

// SchemaDraft is an open schema edit session. Nothing it does reaches storage
// until Commit, except the item lookups made by HasArchivableData.
type SchemaDraft struct {
	store     types.Store
	clusterID string
	name      string
	fields    []*DraftField
	nextID    int
	closed    bool
}

// Start snapshots the cluster's name and fields in order.
// Returns ErrNotFound when the cluster does not exist.
func (e *SchemaEditor) Start(clusterID string) (*SchemaDraft, error) {
	c, err := getCluster(e.store, clusterID)
	if err != nil {
		return nil, storageErr("start schema edit", err)
	}
	defs, err := fetchFields(e.store, clusterID)
	if err != nil {
		return nil, storageErr("start schema edit", err)
	}

	d := &SchemaDraft{store: e.store, clusterID: c.ClusterID, name: c.Name}
	for _, fd := range defs {
		d.fields = append(d.fields, &DraftField{
			ID:           d.newID(),
			ExistingID:   fd.FieldID,
			Name:         fd.FieldName,
			OriginalName: fd.FieldName,
		})
	}
	d.renumber()
	return d, nil
}

func (d *SchemaDraft) newID() int {
	d.nextID++
	return d.nextID
}

// renumber sets every Order to the field's index.
func (d *SchemaDraft) renumber() {
	for i, f := range d.fields {
		f.Order = i
	}
}

func (d *SchemaDraft) index(id int) (int, error) {
	for i, f := range d.fields {
		if f.ID == id {
			return i, nil
		}
	}
	return -1, types.ErrFieldNotFound
}

// ClusterID returns the cluster being edited.
func (d *SchemaDraft) ClusterID() string { return d.clusterID }

// Name returns the staged cluster name.
func (d *SchemaDraft) Name() string { return d.name }

// Closed reports whether the draft was committed or cancelled.
func (d *SchemaDraft) Closed() bool { return d.closed }

// Fields returns a copy of the staged fields in order.
func (d *SchemaDraft) Fields() []DraftField {
	out := make([]DraftField, len(d.fields))
	for i, f := range d.fields {
		out[i] = *f
	}
	return out
}

// Field returns the staged field with the given session ID.
func (d *SchemaDraft) Field(id int) (DraftField, error) {
	i, err := d.index(id)
	if err != nil {
		return DraftField{}, err
	}
	return *d.fields[i], nil
}

// FieldByName returns the first staged field whose current name matches
// name after trimming.
func (d *SchemaDraft) FieldByName(name string) (DraftField, error) {
	name = types.TrimText(name)
	for _, f := range d.fields {
		if types.TrimText(f.Name) == name {
			return *f, nil
		}
	}
	return DraftField{}, types.ErrFieldNotFound
}

// SetName stages a new cluster name. It is validated by Commit.
func (d *SchemaDraft) SetName(name string) error {
	if d.closed {
		return types.ErrDraftClosed
	}
	d.name = name
	return nil
}

// AddField appends a new field. Blank names are refused with
// ErrInvalidFieldName.
func (d *SchemaDraft) AddField(name string) (DraftField, error) {
	if d.closed {
		return DraftField{}, types.ErrDraftClosed
	}
	if types.TrimText(name) == "" {
		return DraftField{}, types.ErrInvalidFieldName
	}
	f := &DraftField{ID: d.newID(), Name: name}
	d.fields = append(d.fields, f)
	d.renumber()
	return *f, nil
}

// RenameField changes a staged field's name. The field keeps its identity,
// so items' values under the old name become archived once committed.
func (d *SchemaDraft) RenameField(id int, name string) error {
	if d.closed {
		return types.ErrDraftClosed
	}
	i, err := d.index(id)
	if err != nil {
		return err
	}
	d.fields[i].Name = name
	return nil
}

// MoveField moves a staged field to position to. Positions beyond either
// end are clamped.
func (d *SchemaDraft) MoveField(id int, to int) error {
	if d.closed {
		return types.ErrDraftClosed
	}
	from, err := d.index(id)
	if err != nil {
		return err
	}
	if to < 0 {
		to = 0
	}
	if to > len(d.fields)-1 {
		to = len(d.fields) - 1
	}
	f := d.fields[from]
	d.fields = append(d.fields[:from], d.fields[from+1:]...)
	d.fields = append(d.fields[:to], append([]*DraftField{f}, d.fields[to:]...)...)
	d.renumber()
	return nil
}

// HasArchivableData reports whether any item of the cluster stores a value
// under the field's original name. Fields added in this session have none.
func (d *SchemaDraft) HasArchivableData(id int) (bool, error) {
	if d.closed {
		return false, types.ErrDraftClosed
	}
	i, err := d.index(id)
	if err != nil {
		return false, err
	}
	original := d.fields[i].OriginalName
	if original == "" {
		return false, nil
	}
	items, err := fetchItems(d.store, d.clusterID)
	if err != nil {
		return false, storageErr("check field data", err)
	}
	for _, it := range items {
		if it.HasField(original) {
			return true, nil
		}
	}
	return false, nil
}

// RemoveField drops a staged field. When items hold values under the field's
// original name the caller must pass confirmed; otherwise it gets
// ErrConfirmationRequired and nothing changes. Item values are never removed.
func (d *SchemaDraft) RemoveField(id int, confirmed bool) error {
	if d.closed {
		return types.ErrDraftClosed
	}
	i, err := d.index(id)
	if err != nil {
		return err
	}
	if !confirmed {
		has, err := d.HasArchivableData(id)
		if err != nil {
			return err
		}
		if has {
			return types.ErrConfirmationRequired
		}
	}
	d.fields = append(d.fields[:i], d.fields[i+1:]...)
	d.renumber()
	return nil
}

// Cancel discards the draft. Later calls return ErrDraftClosed.
func (d *SchemaDraft) Cancel() {
	d.closed = true
}

// Validate checks the staged cluster name and every staged field name.
func (d *SchemaDraft) Validate() error {
	if d.closed {
		return types.ErrDraftClosed
	}
	if types.TrimText(d.name) == "" {
		return types.ErrInvalidName
	}
	for _, f := range d.fields {
		if types.TrimText(f.Name) == "" {
			return types.ErrInvalidFieldName
		}
	}
	return nil
}

// Commit validates the draft and writes it in one transaction: the cluster
// name, deletion of fields no longer staged, then every staged field in
// order, updated in place when it already exists and inserted otherwise.
// A failed commit changes nothing and leaves the draft open; a successful
// one closes it.
func (d *SchemaDraft) Commit() error {
	if err := d.Validate(); err != nil {
		return err
	}

	err := d.store.Update(func(tx types.Tx) error {
		c, err := getCluster(tx, d.clusterID)
		if err != nil {
			return err
		}
		if err := c.Rename(d.name); err != nil {
			return err
		}
		ct, err := tx.GetTable(types.ClustersTable)
		if err != nil {
			return err
		}
		if _, err := ct.Set(c.ClusterID, c); err != nil {
			return err
		}

		persisted, err := fetchFields(tx, d.clusterID)
		if err != nil {
			return err
		}
		staged := make(map[string]bool, len(d.fields))
		for _, f := range d.fields {
			if f.ExistingID != "" {
				staged[f.ExistingID] = true
			}
		}

		ft, err := tx.GetTable(types.FieldDefinitionsTable)
		if err != nil {
			return err
		}
		kept := make(map[string]*types.FieldDefinition, len(persisted))
		for _, fd := range persisted {
			if staged[fd.FieldID] {
				kept[fd.FieldID] = fd
				continue
			}
			if err := ft.Delete(fd.FieldID); err != nil {
				return err
			}
		}

		for i, f := range d.fields {
			fd, ok := kept[f.ExistingID]
			if !ok {
				fd = &types.FieldDefinition{ClusterID: d.clusterID}
			}
			fd.FieldName = types.TrimText(f.Name)
			fd.Order = i
			if _, err := ft.Set(fd.FieldID, fd); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return storageErr("commit schema", err)
	}

	d.closed = true
	return nil
}
