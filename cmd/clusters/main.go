// Command clusters keeps structured notes in user-defined clusters.
package main

import "github.com/mesh-intelligence/clusters/internal/cli"

func main() {
	cli.Execute()
}
