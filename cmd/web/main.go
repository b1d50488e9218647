package main

import "bilca_backend/internal/app"

func main() {
	app.Execute()
}
