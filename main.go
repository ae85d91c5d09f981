// Command deadcore finds dead files in TypeScript/JavaScript projects.
package main

import "github.com/deadcore/analyzer/cmd"

func main() {
	cmd.Execute()
}
