package main

import "github.com/Lukazavrr/hotwheels-bot/cmd/hotwheels/cli"

func main() {
	cli.Execute()
}
