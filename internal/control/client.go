package control

import (
	"context"
	"fmt"

	"github.com/godbus/dbus/v5"
)

// Client calls a running ximd over D-Bus.
type Client struct {
	conn *dbus.Conn
	obj  dbus.BusObject
}

// Dial connects to bus and binds the ximd object.
func Dial(bus string) (*Client, error) {
	conn, err := Connect(bus)
	if err != nil {
		return nil, fmt.Errorf("connect %s bus: %w", bus, err)
	}
	return NewClient(conn), nil
}

// NewClient binds the ximd object on an existing connection.
func NewClient(conn *dbus.Conn) *Client {
	return &Client{
		conn: conn,
		obj:  conn.Object(BusName, ObjectPath),
	}
}

// Status calls org.ximd.Server1.Status.
func (c *Client) Status(ctx context.Context) (Status, error) {
	var st Status
	err := c.obj.CallWithContext(ctx, Interface+".Status", 0).
		Store(&st.Live, &st.Dispatched, &st.Rejected, &st.Unsupported)
	if err != nil {
		return Status{}, fmt.Errorf("status: %w", err)
	}
	return st, nil
}

// ListInputContexts calls org.ximd.Server1.ListInputContexts.
func (c *Client) ListInputContexts(ctx context.Context) ([]uint64, error) {
	var ics []uint64
	if err := c.obj.CallWithContext(ctx, Interface+".ListInputContexts", 0).Store(&ics); err != nil {
		return nil, fmt.Errorf("list input contexts: %w", err)
	}
	return ics, nil
}

// IsAlive calls org.ximd.Server1.IsAlive.
func (c *Client) IsAlive(ctx context.Context, ic uint64) (bool, error) {
	var alive bool
	if err := c.obj.CallWithContext(ctx, Interface+".IsAlive", 0, ic).Store(&alive); err != nil {
		return false, fmt.Errorf("is alive: %w", err)
	}
	return alive, nil
}

// Introspect returns the XML description of the exported object.
func (c *Client) Introspect(ctx context.Context) (string, error) {
	var xml string
	if err := c.obj.CallWithContext(ctx, "org.freedesktop.DBus.Introspectable.Introspect", 0).Store(&xml); err != nil {
		return "", fmt.Errorf("introspect: %w", err)
	}
	return xml, nil
}

// Close closes the underlying connection.
func (c *Client) Close() error {
	return c.conn.Close()
}
