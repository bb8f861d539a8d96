package main

import "github.com/example/gaiola-watcher/cmd"

func main() {
	cmd.Execute()
}
