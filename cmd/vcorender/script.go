package main

import (
	"errors"
	"fmt"
	"os"

	lua "github.com/yuin/gopher-lua"

	"github.com/arl/vco"
	"github.com/arl/vco/voice"
)

// script runs a Lua control script. Every render owns its script, a Lua
// state is not safe for concurrent use.
type script struct {
	L      *lua.LState
	stepFn lua.LValue
	ctl    voice.Controls
	strike bool
}

func loadScript(path string, ctl voice.Controls) (*script, error) {
	src, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	sc, err := newScript(string(src), ctl)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return sc, nil
}

// newScript runs src, which must define a global step function, with ctl
// as the initial controls.
func newScript(src string, ctl voice.Controls) (*script, error) {
	sc := &script{L: lua.NewState(), ctl: ctl}
	sc.register()

	if err := sc.L.DoString(src); err != nil {
		sc.close()
		return nil, err
	}
	sc.stepFn = sc.L.GetGlobal("step")
	if sc.stepFn.Type() != lua.LTFunction {
		sc.close()
		return nil, errors.New("script defines no step function")
	}
	return sc, nil
}

func (sc *script) register() {
	L := sc.L
	L.SetGlobal("shape", L.NewFunction(func(L *lua.LState) int {
		name := L.CheckString(1)
		s, err := vco.ParseMacroShape(name)
		if err != nil {
			L.RaiseError("%v", err)
			return 0
		}
		sc.ctl.Shape = s
		return 0
	}))
	L.SetGlobal("note", L.NewFunction(func(L *lua.LState) int {
		sc.ctl.Note = float64(L.CheckNumber(1))
		return 0
	}))
	L.SetGlobal("timbre", L.NewFunction(func(L *lua.LState) int {
		sc.ctl.Timbre = float64(L.CheckNumber(1))
		return 0
	}))
	L.SetGlobal("color", L.NewFunction(func(L *lua.LState) int {
		sc.ctl.Color = float64(L.CheckNumber(1))
		return 0
	}))
	L.SetGlobal("strike", L.NewFunction(func(L *lua.LState) int {
		sc.strike = true
		return 0
	}))
}

// step calls the script's step function with the time t in seconds.
func (sc *script) step(t float64) error {
	return sc.L.CallByParam(lua.P{
		Fn:      sc.stepFn,
		NRet:    0,
		Protect: true,
	}, lua.LNumber(t))
}

func (sc *script) controls() voice.Controls { return sc.ctl }

// takeStrike reports whether strike was called since the last call.
func (sc *script) takeStrike() bool {
	s := sc.strike
	sc.strike = false
	return s
}

func (sc *script) close() { sc.L.Close() }
