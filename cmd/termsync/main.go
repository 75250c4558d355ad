// Command termsync keeps the concept search index in sync with the
// terminology graph API.
package main

import "github.com/MJU-PSI/yti-terminology-api-sub001/internal/adapters/driving/cli"

func main() {
	cli.Execute()
}
