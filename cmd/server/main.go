package main

import "genpay/internal/app"

// @title           Generator Payments API
// @version         1.0
// @description     Multi-tenant billing backend for utility-generator operators.
// @BasePath        /api
func main() {
	app.Run()
}
