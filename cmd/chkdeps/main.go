// Command chkdeps queries and maintains the installer dependency ledger.
package main

import "os"

func main() {
	os.Exit(execute())
}
