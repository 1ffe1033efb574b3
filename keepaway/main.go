// Command keepaway runs keep-away simulations from the command line.
package main

import "github.com/sarchlab/keepaway/keepaway/cmd"

func main() {
	cmd.Execute()
}
