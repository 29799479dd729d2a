package main

import "github.com/tripverse-solutions/ms-go-booking-webhooks/cmd"

func main() {
	cmd.Execute()
}
