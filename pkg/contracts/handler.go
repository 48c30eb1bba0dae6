package contracts

import "github.com/julienschmidt/httprouter"

// Handler is implemented by every HTTP handler group that can mount its
// routes on the application router.
type Handler interface {
	RegisterRoutes(router *httprouter.Router)
}
