package main

import "github.com/frahmantamala/ebooklet-admin/cmd"

func main() {
	cmd.Execute()
}
