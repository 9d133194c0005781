// SPDX-License-Identifier: ISC
// Copyright (c) 2014-2020 Bitmark Inc.
// Use of this source code is governed by an ISC
// license that can be found in the LICENSE file.

// Package configuration - parse a Lua configuration file
//
// the file is a Lua program that returns a single table, most of base
// Lua is available so a configuration can read files or use getenv to
// pick up environment supplied items, e.g.
//
//   local M = {}
//   M.data_directory = "."
//   M.registrar_identifier = tonumber(os.getenv("RSP_IDENTIFIER") or "0")
//   return M
package configuration
