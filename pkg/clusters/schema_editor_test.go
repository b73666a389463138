package clusters

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mesh-intelligence/clusters/pkg/types"
)

// schemaFixture is a Books cluster with Title and Author.
type schemaFixture struct {
	store   types.Store
	repo    *Repository
	editor  *SchemaEditor
	cluster *types.Cluster
}

func newSchemaFixture(t *testing.T) schemaFixture {
	t.Helper()
	store := newStore(t)
	repo := NewRepository(store)
	return schemaFixture{
		store:   store,
		repo:    repo,
		editor:  NewSchemaEditor(store),
		cluster: mustCreate(t, repo, "Books", "Title", "Author"),
	}
}

func (f schemaFixture) start(t *testing.T) *SchemaDraft {
	t.Helper()
	d, err := f.editor.Start(f.cluster.ClusterID)
	require.NoError(t, err)
	return d
}

func fieldID(t *testing.T, d *SchemaDraft, name string) int {
	t.Helper()
	f, err := d.FieldByName(name)
	require.NoError(t, err)
	return f.ID
}

func TestSchemaEditorStart(t *testing.T) {
	f := newSchemaFixture(t)
	persisted := mustFields(t, f.repo, f.cluster.ClusterID)

	d := f.start(t)
	assert.Equal(t, "Books", d.Name())
	assert.Equal(t, f.cluster.ClusterID, d.ClusterID())

	fields := d.Fields()
	require.Len(t, fields, 2)
	for i, df := range fields {
		assert.Equal(t, persisted[i].FieldID, df.ExistingID)
		assert.Equal(t, persisted[i].FieldName, df.Name)
		assert.Equal(t, persisted[i].FieldName, df.OriginalName)
		assert.Equal(t, i, df.Order)
		assert.False(t, df.IsNew())
	}

	_, err := f.editor.Start("missing")
	assert.ErrorIs(t, err, types.ErrNotFound)
}

func TestSchemaCommitKeepsOrdersContiguous(t *testing.T) {
	tests := []struct {
		name  string
		edit  func(t *testing.T, d *SchemaDraft)
		names []string
	}{
		{
			name:  "no changes",
			edit:  func(t *testing.T, d *SchemaDraft) {},
			names: []string{"Title", "Author"},
		},
		{
			name: "add two fields",
			edit: func(t *testing.T, d *SchemaDraft) {
				_, err := d.AddField("Year")
				require.NoError(t, err)
				_, err = d.AddField(" Genre ")
				require.NoError(t, err)
			},
			names: []string{"Title", "Author", "Year", "Genre"},
		},
		{
			name: "move last to front",
			edit: func(t *testing.T, d *SchemaDraft) {
				require.NoError(t, d.MoveField(fieldID(t, d, "Author"), 0))
			},
			names: []string{"Author", "Title"},
		},
		{
			name: "remove first then add",
			edit: func(t *testing.T, d *SchemaDraft) {
				require.NoError(t, d.RemoveField(fieldID(t, d, "Title"), false))
				_, err := d.AddField("Year")
				require.NoError(t, err)
			},
			names: []string{"Author", "Year"},
		},
		{
			name: "add move remove",
			edit: func(t *testing.T, d *SchemaDraft) {
				year, err := d.AddField("Year")
				require.NoError(t, err)
				_, err = d.AddField("Pages")
				require.NoError(t, err)
				require.NoError(t, d.MoveField(year.ID, 0))
				require.NoError(t, d.RemoveField(fieldID(t, d, "Author"), false))
				require.NoError(t, d.MoveField(fieldID(t, d, "Pages"), 1))
			},
			names: []string{"Year", "Pages", "Title"},
		},
		{
			name: "swap names between fields",
			edit: func(t *testing.T, d *SchemaDraft) {
				title := fieldID(t, d, "Title")
				author := fieldID(t, d, "Author")
				require.NoError(t, d.RenameField(title, "Author"))
				require.NoError(t, d.RenameField(author, "Title"))
			},
			names: []string{"Author", "Title"},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSchemaFixture(t)
			d := f.start(t)
			tt.edit(t, d)

			for i, df := range d.Fields() {
				assert.Equal(t, i, df.Order, "draft positions")
			}
			require.NoError(t, d.Commit())
			assert.True(t, d.Closed())

			defs := mustFields(t, f.repo, f.cluster.ClusterID)
			assert.True(t, types.OrdersContiguous(defs))
			assert.Equal(t, tt.names, types.FieldNames(defs))
		})
	}
}

func TestSchemaRenameKeepsIdentity(t *testing.T) {
	f := newSchemaFixture(t)
	item := putItem(t, f.store, f.cluster.ClusterID, types.FieldValues{"Title": "Dune", "Author": "Herbert"})
	before := mustFields(t, f.repo, f.cluster.ClusterID)

	d := f.start(t)
	require.NoError(t, d.RenameField(fieldID(t, d, "Author"), "Writer"))
	require.NoError(t, d.Commit())

	after := mustFields(t, f.repo, f.cluster.ClusterID)
	require.Len(t, after, 2)
	assert.Equal(t, before[1].FieldID, after[1].FieldID, "field is updated, not replaced")
	assert.Equal(t, "Writer", after[1].FieldName)

	stored, err := f.repo.GetItem(item.ItemID)
	require.NoError(t, err)
	assert.Equal(t, []types.FieldValue{{Name: "Author", Value: "Herbert"}}, stored.ArchivedFields(after))
	assert.Equal(t, []types.FieldValue{{Name: "Title", Value: "Dune"}, {Name: "Writer", Value: ""}}, stored.ActiveFields(after))
}

func TestSchemaRemoveField(t *testing.T) {
	t.Run("field with data needs confirmation and keeps the data", func(t *testing.T) {
		f := newSchemaFixture(t)
		item := putItem(t, f.store, f.cluster.ClusterID, types.FieldValues{"Title": "Dune", "Author": "Herbert"})

		d := f.start(t)
		author := fieldID(t, d, "Author")
		has, err := d.HasArchivableData(author)
		require.NoError(t, err)
		assert.True(t, has)

		assert.ErrorIs(t, d.RemoveField(author, false), types.ErrConfirmationRequired)
		assert.Len(t, d.Fields(), 2, "unconfirmed removal changes nothing")

		require.NoError(t, d.RemoveField(author, true))
		require.NoError(t, d.Commit())

		defs := mustFields(t, f.repo, f.cluster.ClusterID)
		assert.Equal(t, []string{"Title"}, types.FieldNames(defs))

		stored, err := f.repo.GetItem(item.ItemID)
		require.NoError(t, err)
		assert.Equal(t, "Herbert", stored.FieldValues()["Author"])
		assert.Equal(t, []types.FieldValue{{Name: "Author", Value: "Herbert"}}, stored.ArchivedFields(defs))
	})

	t.Run("field without data is removed at once", func(t *testing.T) {
		f := newSchemaFixture(t)
		putItem(t, f.store, f.cluster.ClusterID, types.FieldValues{"Title": "Dune"})

		d := f.start(t)
		author := fieldID(t, d, "Author")
		has, err := d.HasArchivableData(author)
		require.NoError(t, err)
		assert.False(t, has)
		require.NoError(t, d.RemoveField(author, false))
	})

	t.Run("check uses the original name", func(t *testing.T) {
		f := newSchemaFixture(t)
		putItem(t, f.store, f.cluster.ClusterID, types.FieldValues{"Author": "Herbert"})

		d := f.start(t)
		author := fieldID(t, d, "Author")
		require.NoError(t, d.RenameField(author, "Writer"))
		has, err := d.HasArchivableData(author)
		require.NoError(t, err)
		assert.True(t, has)
	})

	t.Run("new field never needs confirmation", func(t *testing.T) {
		f := newSchemaFixture(t)
		putItem(t, f.store, f.cluster.ClusterID, types.FieldValues{"Year": "1965"})

		d := f.start(t)
		year, err := d.AddField("Year")
		require.NoError(t, err)
		assert.True(t, year.IsNew())
		has, err := d.HasArchivableData(year.ID)
		require.NoError(t, err)
		assert.False(t, has)
		require.NoError(t, d.RemoveField(year.ID, false))
	})

	t.Run("unknown id", func(t *testing.T) {
		d := newSchemaFixture(t).start(t)
		assert.ErrorIs(t, d.RemoveField(999, true), types.ErrFieldNotFound)
		_, err := d.HasArchivableData(999)
		assert.ErrorIs(t, err, types.ErrFieldNotFound)
	})
}

func TestSchemaCommitValidation(t *testing.T) {
	tests := []struct {
		name string
		edit func(t *testing.T, d *SchemaDraft)
		want error
	}{
		{
			name: "blank cluster name with valid fields",
			edit: func(t *testing.T, d *SchemaDraft) {
				require.NoError(t, d.SetName("   "))
				_, err := d.AddField("Year")
				require.NoError(t, err)
			},
			want: types.ErrInvalidName,
		},
		{
			name: "field renamed to blank",
			edit: func(t *testing.T, d *SchemaDraft) {
				require.NoError(t, d.SetName("Library"))
				require.NoError(t, d.RenameField(fieldID(t, d, "Title"), " \n"))
			},
			want: types.ErrInvalidFieldName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newSchemaFixture(t)
			before := mustFields(t, f.repo, f.cluster.ClusterID)
			d := f.start(t)
			tt.edit(t, d)

			assert.ErrorIs(t, d.Validate(), tt.want)
			assert.ErrorIs(t, d.Commit(), tt.want)
			assert.False(t, d.Closed(), "rejected commit leaves the draft open")

			c, err := f.repo.GetCluster(f.cluster.ClusterID)
			require.NoError(t, err)
			assert.Equal(t, "Books", c.Name)
			assert.Equal(t, before, mustFields(t, f.repo, f.cluster.ClusterID))
		})
	}

	t.Run("blank new field is refused", func(t *testing.T) {
		d := newSchemaFixture(t).start(t)
		_, err := d.AddField("  ")
		assert.ErrorIs(t, err, types.ErrInvalidFieldName)
		assert.Len(t, d.Fields(), 2)
	})
}

func TestSchemaCommitRenamesCluster(t *testing.T) {
	f := newSchemaFixture(t)
	d := f.start(t)
	require.NoError(t, d.SetName("  Library "))
	require.NoError(t, d.Commit())

	c, err := f.repo.GetCluster(f.cluster.ClusterID)
	require.NoError(t, err)
	assert.Equal(t, "Library", c.Name)
	assert.WithinDuration(t, f.cluster.CreatedAt, c.CreatedAt, 0)
}

func TestSchemaCommitStorageFailureRollsBack(t *testing.T) {
	f := newSchemaFixture(t)
	before := mustFields(t, f.repo, f.cluster.ClusterID)
	boom := errors.New("io error")

	d, err := NewSchemaEditor(failingStore{Store: f.store, err: boom}).Start(f.cluster.ClusterID)
	require.NoError(t, err)
	require.NoError(t, d.SetName("Library"))
	require.NoError(t, d.RemoveField(fieldID(t, d, "Title"), true))
	_, err = d.AddField("Year")
	require.NoError(t, err)

	err = d.Commit()
	var se *types.StorageError
	require.ErrorAs(t, err, &se)
	assert.ErrorIs(t, err, boom)
	assert.False(t, d.Closed())

	c, err := f.repo.GetCluster(f.cluster.ClusterID)
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)
	assert.Equal(t, before, mustFields(t, f.repo, f.cluster.ClusterID))
}

func TestSchemaCancel(t *testing.T) {
	f := newSchemaFixture(t)
	before := mustFields(t, f.repo, f.cluster.ClusterID)

	d := f.start(t)
	require.NoError(t, d.SetName("Library"))
	_, err := d.AddField("Year")
	require.NoError(t, err)
	title := fieldID(t, d, "Title")
	d.Cancel()
	assert.True(t, d.Closed())

	assert.ErrorIs(t, d.SetName("x"), types.ErrDraftClosed)
	_, err = d.AddField("Pages")
	assert.ErrorIs(t, err, types.ErrDraftClosed)
	assert.ErrorIs(t, d.RenameField(title, "Name"), types.ErrDraftClosed)
	assert.ErrorIs(t, d.MoveField(title, 1), types.ErrDraftClosed)
	assert.ErrorIs(t, d.RemoveField(title, true), types.ErrDraftClosed)
	_, err = d.HasArchivableData(title)
	assert.ErrorIs(t, err, types.ErrDraftClosed)
	assert.ErrorIs(t, d.Validate(), types.ErrDraftClosed)
	assert.ErrorIs(t, d.Commit(), types.ErrDraftClosed)

	c, err := f.repo.GetCluster(f.cluster.ClusterID)
	require.NoError(t, err)
	assert.Equal(t, "Books", c.Name)
	assert.Equal(t, before, mustFields(t, f.repo, f.cluster.ClusterID))
}

func TestSchemaMoveFieldClamps(t *testing.T) {
	d := newSchemaFixture(t).start(t)
	title := fieldID(t, d, "Title")

	require.NoError(t, d.MoveField(title, 10))
	assert.Equal(t, "Title", d.Fields()[1].Name)

	require.NoError(t, d.MoveField(title, -3))
	assert.Equal(t, "Title", d.Fields()[0].Name)

	assert.ErrorIs(t, d.MoveField(999, 0), types.ErrFieldNotFound)
}
