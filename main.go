// SPDX-License-Identifier: MPL-2.0

package main

import cmd "github.com/addonctl/addonctl/cmd/addonctl"

func main() {
	cmd.Execute()
}
