// Package portmgr implements the port manager: a static routing table
// mapping an input port id to the output port its generated bytes should
// be delivered to, backed by a small YAML file. The engine itself is
// agnostic to ports; portmgr is the collaborator that decides where a
// process_input call's output goes.
package portmgr

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// tableSize is the fixed number of routable ports — a byte-wide port id
// space, 0-255.
const tableSize = 256

// Table is a fixed 256-entry routing table from input port id to output
// port id. A zero entry (the zero value, with Routed == false) means the
// input port has no configured output route.
type Table struct {
	routes [tableSize]route
}

type route struct {
	OutPort byte
	Routed  bool
}

// fileFormat is the on-disk YAML shape: a flat list of "in: out" route
// pairs, omitting unrouted ports entirely.
type fileFormat struct {
	Routes []routeEntry `yaml:"routes"`
}

type routeEntry struct {
	In  byte `yaml:"in"`
	Out byte `yaml:"out"`
}

// New returns an empty routing table with no configured routes.
func New() *Table {
	return &Table{}
}

// SetRoute configures inPort to deliver output to outPort.
func (t *Table) SetRoute(inPort, outPort byte) {
	t.routes[inPort] = route{OutPort: outPort, Routed: true}
}

// Lookup returns the output port configured for inPort, and whether one
// is configured at all.
func (t *Table) Lookup(inPort byte) (byte, bool) {
	r := t.routes[inPort]
	return r.OutPort, r.Routed
}

// Load reads a routing table from a YAML file at path.
func Load(path string) (*Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("portmgr: reading routing file: %w", err)
	}

	var ff fileFormat
	if err := yaml.Unmarshal(data, &ff); err != nil {
		return nil, fmt.Errorf("portmgr: parsing routing file: %w", err)
	}

	t := New()
	for _, r := range ff.Routes {
		t.SetRoute(r.In, r.Out)
	}
	return t, nil
}

// Save writes t's configured routes to path as YAML, omitting unrouted
// ports.
func (t *Table) Save(path string) error {
	var ff fileFormat
	for in := 0; in < tableSize; in++ {
		if r := t.routes[in]; r.Routed {
			ff.Routes = append(ff.Routes, routeEntry{In: byte(in), Out: r.OutPort})
		}
	}

	data, err := yaml.Marshal(ff)
	if err != nil {
		return fmt.Errorf("portmgr: marshaling routing file: %w", err)
	}
	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("portmgr: writing routing file: %w", err)
	}
	return nil
}
