package main

import "github.com/tidepay/tidepay-go/internal/cli"

func main() {
	cli.Execute()
}
