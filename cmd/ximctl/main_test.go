package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ximd/internal/control"
)

type fakeQuerier struct {
	status control.Status
	live   map[uint64]bool
	err    error
}

func (f *fakeQuerier) Status(context.Context) (control.Status, error) { return f.status, f.err }

func (f *fakeQuerier) ListInputContexts(context.Context) ([]uint64, error) {
	if f.err != nil {
		return nil, f.err
	}
	var out []uint64
	for ic := range f.live {
		out = append(out, ic)
	}
	return out, nil
}

func (f *fakeQuerier) IsAlive(_ context.Context, ic uint64) (bool, error) {
	return f.live[ic], f.err
}

func (f *fakeQuerier) Introspect(context.Context) (string, error) {
	return control.IntrospectData(), f.err
}

func setJSON(t *testing.T, v bool) {
	t.Helper()
	old := *asJSON
	*asJSON = v
	t.Cleanup(func() { *asJSON = old })
}

func TestStatusText(t *testing.T) {
	q := &fakeQuerier{status: control.Status{Live: 2, Dispatched: 40, Rejected: 1}}
	var out bytes.Buffer
	require.NoError(t, runCommand(context.Background(), q, &out, "status", nil))

	assert.Contains(t, out.String(), "Live input contexts: 2")
	assert.Contains(t, out.String(), "Messages dispatched: 40")
	assert.Contains(t, out.String(), "Dead-context calls:  1")
}

func TestStatusJSON(t *testing.T) {
	setJSON(t, true)
	q := &fakeQuerier{status: control.Status{Live: 3, Unsupported: 5}}
	var out bytes.Buffer
	require.NoError(t, runCommand(context.Background(), q, &out, "status", nil))

	var got control.Status
	require.NoError(t, json.Unmarshal(out.Bytes(), &got))
	assert.Equal(t, q.status, got)
}

func TestList(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runCommand(context.Background(), &fakeQuerier{}, &out, "list", nil))
	assert.Equal(t, "No live input contexts\n", out.String())

	out.Reset()
	q := &fakeQuerier{live: map[uint64]bool{0x2a: true}}
	require.NoError(t, runCommand(context.Background(), q, &out, "list", nil))
	assert.Equal(t, "0x2a\n", out.String())
}

func TestListJSONEmpty(t *testing.T) {
	setJSON(t, true)
	var out bytes.Buffer
	require.NoError(t, runCommand(context.Background(), &fakeQuerier{}, &out, "list", nil))
	assert.JSONEq(t, "[]", out.String())
}

func TestAlive(t *testing.T) {
	q := &fakeQuerier{live: map[uint64]bool{7: true}}

	var out bytes.Buffer
	require.NoError(t, runCommand(context.Background(), q, &out, "alive", []string{"7"}))
	assert.Equal(t, "0x7: live\n", out.String())

	out.Reset()
	require.NoError(t, runCommand(context.Background(), q, &out, "alive", []string{"0x8"}))
	assert.Equal(t, "0x8: dead\n", out.String())

	assert.Error(t, runCommand(context.Background(), q, &out, "alive", nil))
	assert.Error(t, runCommand(context.Background(), q, &out, "alive", []string{"seven"}))
}

func TestIntrospectAndUnknown(t *testing.T) {
	var out bytes.Buffer
	require.NoError(t, runCommand(context.Background(), &fakeQuerier{}, &out, "introspect", nil))
	assert.Contains(t, out.String(), control.Interface)

	assert.EqualError(t, runCommand(context.Background(), &fakeQuerier{}, &out, "bogus", nil),
		"unknown command: bogus")
}

func TestErrorsPropagate(t *testing.T) {
	boom := errors.New("no reply")
	q := &fakeQuerier{err: boom}
	var out bytes.Buffer
	for _, cmd := range []string{"status", "list", "introspect"} {
		assert.ErrorIs(t, runCommand(context.Background(), q, &out, cmd, nil), boom, cmd)
	}
	assert.ErrorIs(t, runCommand(context.Background(), q, &out, "alive", []string{"1"}), boom)
}

var _ querier = (*control.Client)(nil)
