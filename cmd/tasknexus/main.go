// @title           TaskNexus API
// @version         1.0.0
// @description     Task management API with stateless JWT authentication.
// @BasePath        /
// @securityDefinitions.apikey BearerAuth
// @in              header
// @name            Authorization
package main

import "github.com/tasknexus/tasknexus-api/cmd/tasknexus/cmd"

func main() {
	cmd.Execute()
}
