// Command shiftpay computes attendance sheets from the command line and can
// also run the HTTP server.
//
//	shiftpay compute shifts.xlsx -o result.xlsx
//	shiftpay template -o template.csv
//	shiftpay serve --port 3000
package main

import (
	"fmt"
	"os"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
