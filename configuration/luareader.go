// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

package configuration

import (
	"github.com/yuin/gluamapper"
	lua "github.com/yuin/gopher-lua"

	"github.com/bitmark-inc/rserpoold/fault"
)

// TagName - struct tag used to name configuration keys
const TagName = "gluamapper"

// ParseConfigurationFile - run a Lua file and assign the table it
// returns to a configuration structure
//
// the global "arg" table holds the file name at index 0 followed by
// any extra arguments
func ParseConfigurationFile(fileName string, config interface{}, arguments ...string) error {
	L := lua.NewState()
	defer L.Close()

	L.OpenLibs()

	arg := &lua.LTable{}
	arg.Insert(0, lua.LString(fileName))
	for i, a := range arguments {
		arg.RawSetInt(i+1, lua.LString(a))
	}
	L.SetGlobal("arg", arg)

	if err := L.DoFile(fileName); err != nil {
		return err
	}

	table, ok := L.Get(-1).(*lua.LTable)
	if !ok {
		return fault.ErrConfigurationNotTable
	}

	mapper := gluamapper.Mapper{
		Option: gluamapper.Option{
			NameFunc: func(s string) string {
				return s
			},
			TagName: TagName,
		},
	}
	return mapper.Map(table, config)
}
