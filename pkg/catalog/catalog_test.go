package catalog

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/latticedb/lattice/pkg/events"
	"github.com/latticedb/lattice/pkg/jsonvalue"
)

func TestOpenPersistsAndRestoresAcrossReopen(t *testing.T) {
	dir := t.TempDir()

	v, err := Open(dir, Defaults{DefaultMaximalSize: 512})
	require.NoError(t, err)

	c, err := v.Create("users", Document)
	require.NoError(t, err)
	require.NoError(t, v.Rename(c, "accounts"))
	require.NoError(t, v.Close())

	reopened, err := Open(dir, Defaults{DefaultMaximalSize: 512})
	require.NoError(t, err)
	defer reopened.Close()

	found, ok := reopened.LookupByName("accounts")
	require.True(t, ok)
	require.Equal(t, c.CID(), found.CID())

	second, err := reopened.Create("orders", Document)
	require.NoError(t, err)
	require.Equal(t, c.CID()+1, second.CID(), "tick must resume from the persisted high-water mark")
}

func TestCreateAssignsDenseCid(t *testing.T) {
	v := New(t.TempDir(), Defaults{})

	a, err := v.Create("users", Document)
	require.NoError(t, err)
	b, err := v.Create("orders", Document)
	require.NoError(t, err)

	require.Equal(t, int64(1), a.CID())
	require.Equal(t, int64(2), b.CID())
	require.Equal(t, Loaded, a.Status())
}

func TestCreateDuplicateNameRejected(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	_, err := v.Create("users", Document)
	require.NoError(t, err)

	_, err = v.Create("users", Document)
	require.Error(t, err)
}

func TestUnloadLoadRoundTrip(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	c, err := v.Create("users", Document)
	require.NoError(t, err)

	require.NoError(t, v.Unload(c))
	require.Equal(t, Unloaded, c.Status())

	require.NoError(t, v.Load(c))
	require.Equal(t, Loaded, c.Status())
}

func TestUnloadRejectedWhenNotLoaded(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	c, err := v.Create("users", Document)
	require.NoError(t, err)
	require.NoError(t, v.Unload(c))

	err = v.Unload(c)
	require.Error(t, err)
}

func TestRenameUpdatesByNameIndex(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	c, err := v.Create("users", Document)
	require.NoError(t, err)

	require.NoError(t, v.Rename(c, "accounts"))

	_, ok := v.LookupByName("users")
	require.False(t, ok)
	found, ok := v.LookupByName("accounts")
	require.True(t, ok)
	require.Equal(t, c.CID(), found.CID())
}

func TestDropMovesToDeadListAndIsTerminal(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	c, err := v.Create("users", Document)
	require.NoError(t, err)

	require.NoError(t, v.Drop(c))
	require.Equal(t, Deleted, c.Status())

	_, ok := v.LookupByName("users")
	require.False(t, ok)

	err = v.Drop(c)
	require.Error(t, err)
}

func TestUseByNameReleaseRoundTrip(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	_, err := v.Create("users", Document)
	require.NoError(t, err)

	handle, err := v.UseByName("users")
	require.NoError(t, err)
	defer handle.Release()

	require.Equal(t, "users", handle.Name())
}

func TestUseByNameOnDeletedCollectionFails(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	c, err := v.Create("users", Document)
	require.NoError(t, err)
	require.NoError(t, v.Drop(c))

	_, err = v.UseById(c.CID())
	require.Error(t, err)
}

func TestUseByID(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	c, err := v.Create("users", Document)
	require.NoError(t, err)

	handle, err := v.UseById(c.CID())
	require.NoError(t, err)
	defer handle.Release()
	require.Equal(t, c.CID(), handle.CID())
}

func TestSaveParametersWritesCanonicalSchema(t *testing.T) {
	dir := t.TempDir()
	v := New(dir, Defaults{DefaultMaximalSize: 1024, WaitForSync: true})
	c, err := v.Create("users", Document)
	require.NoError(t, err)

	require.NoError(t, os.MkdirAll(c.Path(), 0755))
	require.NoError(t, SaveParameters(c))

	data, err := os.ReadFile(filepath.Join(c.Path(), paramsFileName))
	require.NoError(t, err)
	require.Equal(t, `{"cid":1,"name":"users","type":0,"maximalSize":1024,"waitForSync":true,"isSystem":false}`+"\n", string(data))
}

func TestLoadParametersFromValue(t *testing.T) {
	z := jsonvalue.NewZone("test")
	obj := z.NewObject()
	require.NoError(t, obj.Insert("cid", z.NewNumber(3)))
	require.NoError(t, obj.Insert("name", z.NewString("users")))
	require.NoError(t, obj.Insert("type", z.NewNumber(0)))
	require.NoError(t, obj.Insert("maximalSize", z.NewNumber(2048)))
	require.NoError(t, obj.Insert("waitForSync", z.NewBool(true)))
	require.NoError(t, obj.Insert("isSystem", z.NewBool(false)))

	cid, name, typ, maxSize, sync, isSystem, err := LoadParameters(obj)
	require.NoError(t, err)
	require.Equal(t, int64(3), cid)
	require.Equal(t, "users", name)
	require.Equal(t, Document, typ)
	require.Equal(t, int64(2048), maxSize)
	require.True(t, sync)
	require.False(t, isSystem)
}

func TestLoadParametersMissingKeyIsError(t *testing.T) {
	z := jsonvalue.NewZone("test")
	obj := z.NewObject()
	require.NoError(t, obj.Insert("name", z.NewString("users")))

	_, _, _, _, _, _, err := LoadParameters(obj)
	require.Error(t, err)
}

func TestCreatePublishesEventWhenBrokerWired(t *testing.T) {
	broker := events.NewBroker()
	broker.Start()
	defer broker.Stop()

	v := New(t.TempDir(), Defaults{})
	v.Events = broker

	sub := broker.Subscribe()
	defer broker.Unsubscribe(sub)

	_, err := v.Create("users", Document)
	require.NoError(t, err)

	ev := <-sub
	require.Equal(t, events.CollectionCreated, ev.Type)
	require.Equal(t, "users", ev.Metadata["name"])
}

func TestNilEventsPublishesNothing(t *testing.T) {
	v := New(t.TempDir(), Defaults{})
	_, err := v.Create("users", Document)
	require.NoError(t, err)
}
