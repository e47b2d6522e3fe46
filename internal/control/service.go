package control

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/godbus/dbus/v5"
	"github.com/godbus/dbus/v5/introspect"
)

// D-Bus names of the control surface.
const (
	BusName    = "org.ximd.Server"
	ObjectPath = dbus.ObjectPath("/org/ximd/Server")
	Interface  = "org.ximd.Server1"
)

var serverInterface = introspect.Interface{
	Name: Interface,
	Methods: []introspect.Method{
		{
			Name: "Status",
			Args: []introspect.Arg{
				{Name: "live", Type: "u", Direction: "out"},
				{Name: "dispatched", Type: "t", Direction: "out"},
				{Name: "rejected", Type: "t", Direction: "out"},
				{Name: "unsupported", Type: "t", Direction: "out"},
			},
		},
		{
			Name: "ListInputContexts",
			Args: []introspect.Arg{
				{Name: "ics", Type: "at", Direction: "out"},
			},
		},
		{
			Name: "IsAlive",
			Args: []introspect.Arg{
				{Name: "ic", Type: "t", Direction: "in"},
				{Name: "alive", Type: "b", Direction: "out"},
			},
		},
	},
}

// IntrospectData returns the XML served by org.freedesktop.DBus.Introspectable.
func IntrospectData() string {
	node := &introspect.Node{
		Name: string(ObjectPath),
		Interfaces: []introspect.Interface{
			introspect.IntrospectData,
			serverInterface,
		},
	}
	return string(introspect.NewIntrospectable(node))
}

// object is the exported D-Bus object. Method sets map one to one onto
// org.ximd.Server1.
type object struct {
	snap *Snapshot
}

func (o *object) Status() (uint32, uint64, uint64, uint64, *dbus.Error) {
	st := o.snap.Status()
	return st.Live, st.Dispatched, st.Rejected, st.Unsupported, nil
}

func (o *object) ListInputContexts() ([]uint64, *dbus.Error) {
	return o.snap.InputContexts(), nil
}

func (o *object) IsAlive(ic uint64) (bool, *dbus.Error) {
	return o.snap.IsAlive(ic), nil
}

// Service owns the bus connection and the exported object.
type Service struct {
	conn   *dbus.Conn
	logger *slog.Logger
}

// Connect opens the named bus ("session" or "system").
func Connect(bus string) (*dbus.Conn, error) {
	switch bus {
	case "", "session":
		return dbus.ConnectSessionBus()
	case "system":
		return dbus.ConnectSystemBus()
	default:
		return nil, fmt.Errorf("unknown bus %q", bus)
	}
}

// Start exports snap on conn and claims BusName.
func Start(conn *dbus.Conn, snap *Snapshot, logger *slog.Logger) (*Service, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if err := conn.Export(&object{snap: snap}, ObjectPath, Interface); err != nil {
		return nil, fmt.Errorf("export %s: %w", ObjectPath, err)
	}
	if err := conn.Export(introspect.Introspectable(IntrospectData()), ObjectPath,
		"org.freedesktop.DBus.Introspectable"); err != nil {
		return nil, fmt.Errorf("export introspection: %w", err)
	}

	reply, err := conn.RequestName(BusName, dbus.NameFlagDoNotQueue)
	if err != nil {
		return nil, fmt.Errorf("request bus name: %w", err)
	}
	if reply != dbus.RequestNameReplyPrimaryOwner {
		return nil, fmt.Errorf("bus name %s already taken", BusName)
	}

	logger.Info("control service exported", "name", BusName, "path", string(ObjectPath))
	return &Service{conn: conn, logger: logger}, nil
}

// Err reports a lost bus connection.
func (s *Service) Err() error {
	if !s.conn.Connected() {
		return errors.New("bus connection lost")
	}
	return nil
}

// Close releases the bus name and closes the connection.
func (s *Service) Close() error {
	if _, err := s.conn.ReleaseName(BusName); err != nil {
		s.logger.Warn("release bus name", "error", err)
	}
	return s.conn.Close()
}
