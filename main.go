// Command ems manages employee records and computes their payroll.
//
//	ems add --name "Jane Doe" --email jane@x.com --salary 500 --age 30 --hours 45
//	ems list
//	ems menu
//	ems serve
package main

import (
	"os"

	"github.com/Skryldev/employee-payroll/cli"
)

func main() {
	os.Exit(cli.Execute())
}
