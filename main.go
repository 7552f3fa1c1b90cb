package main

import "github.com/mselser95/bet-recommender/cmd"

func main() {
	cmd.Execute()
}
