// BYZRA ⸻ internal/resolve/lua.go
// user detectors written in Lua

package resolve

import (
	"fmt"
	"os"
	"sync"

	lua "github.com/yuin/gopher-lua"

	"tempora/internal/tags"
)

// LuaDetectors owns one Lua state shared by every detector the script returned.
// Calls are serialised, so the detectors are safe for concurrent use.
//
// The script returns a list of tables:
//
//	return {
//	  { name = "gopro", label = "GoPro", match = function(tags, path)
//	      return tags["QuickTime:HandlerDescription"] == "GoPro AVC"
//	  end },
//	}
type LuaDetectors struct {
	mu        sync.Mutex
	L         *lua.LState
	detectors []Detector
}

// loads detectors from a script file
func LoadLuaDetectors(path string) (*LuaDetectors, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read detectors script: %w", err)
	}
	return NewLuaDetectors(string(data))
}

func NewLuaDetectors(src string) (*LuaDetectors, error) {
	L, err := newSandbox()
	if err != nil {
		return nil, err
	}

	if err := L.DoString(src); err != nil {
		L.Close()
		return nil, fmt.Errorf("failed to execute detectors Lua: %w", err)
	}

	result := L.Get(-1)
	L.Pop(1)
	list, ok := result.(*lua.LTable)
	if !ok {
		L.Close()
		return nil, fmt.Errorf("detectors Lua must return a table")
	}

	ld := &LuaDetectors{L: L}
	for i := 1; i <= list.Len(); i++ {
		entry, ok := list.RawGetInt(i).(*lua.LTable)
		if !ok {
			L.Close()
			return nil, fmt.Errorf("detector %d is not a table", i)
		}
		det, err := ld.detector(i, entry)
		if err != nil {
			L.Close()
			return nil, err
		}
		ld.detectors = append(ld.detectors, det)
	}
	return ld, nil
}

func (ld *LuaDetectors) detector(i int, entry *lua.LTable) (Detector, error) {
	name, ok := entry.RawGetString("name").(lua.LString)
	if !ok || name == "" {
		return Detector{}, fmt.Errorf("detector %d is missing a name", i)
	}
	label, ok := entry.RawGetString("label").(lua.LString)
	if !ok || label == "" {
		return Detector{}, fmt.Errorf("detector %q is missing a label", name)
	}
	fn, ok := entry.RawGetString("match").(*lua.LFunction)
	if !ok {
		return Detector{}, fmt.Errorf("detector %q is missing a match function", name)
	}

	return Detector{
		Name:  string(name),
		Label: string(label),
		Match: func(d tags.Dictionary, path string) bool {
			return ld.call(fn, d, path)
		},
	}, nil
}

// a Lua runtime error counts as no match
func (ld *LuaDetectors) call(fn *lua.LFunction, d tags.Dictionary, path string) bool {
	ld.mu.Lock()
	defer ld.mu.Unlock()

	tbl := ld.L.CreateTable(0, len(d))
	for k, v := range d {
		tbl.RawSetString(k, lua.LString(v))
	}

	err := ld.L.CallByParam(lua.P{Fn: fn, NRet: 1, Protect: true}, tbl, lua.LString(path))
	if err != nil {
		return false
	}
	ret := ld.L.Get(-1)
	ld.L.Pop(1)
	return lua.LVAsBool(ret)
}

func (ld *LuaDetectors) Detectors() []Detector {
	return append([]Detector{}, ld.detectors...)
}

func (ld *LuaDetectors) Close() {
	ld.mu.Lock()
	defer ld.mu.Unlock()
	ld.L.Close()
}

// base, string and table only, without the base functions that reach the disk
func newSandbox() (*lua.LState, error) {
	L := lua.NewState(lua.Options{SkipOpenLibs: true})
	for _, lib := range []struct {
		name string
		open lua.LGFunction
	}{
		{lua.BaseLibName, lua.OpenBase},
		{lua.TabLibName, lua.OpenTable},
		{lua.StringLibName, lua.OpenString},
	} {
		if err := L.CallByParam(lua.P{
			Fn:      L.NewFunction(lib.open),
			NRet:    0,
			Protect: true,
		}, lua.LString(lib.name)); err != nil {
			L.Close()
			return nil, fmt.Errorf("failed to open Lua library %s: %w", lib.name, err)
		}
	}
	for _, name := range []string{"dofile", "loadfile", "require", "module"} {
		L.SetGlobal(name, lua.LNil)
	}
	return L, nil
}
