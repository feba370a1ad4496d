package main

import "github.com/weaviate/weaviate-chaos-engineering/apps/backup-and-restore/cmd"

func main() {
	cmd.Execute()
}
