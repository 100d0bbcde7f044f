package handlers

import "github.com/gofiber/fiber/v2"

// Guards are the middleware chains routes are protected with.
type Guards struct {
	// Auth requires a valid bearer token.
	Auth fiber.Handler
	// Optional attaches the identity when a token is presented.
	Optional fiber.Handler
	// Seller resolves the authenticated identity to a seller.
	Seller fiber.Handler
	// OptionalSeller resolves the seller for requests passing Optional.
	OptionalSeller fiber.Handler
	// InquiryLimit rate limits inquiry intake.
	InquiryLimit fiber.Handler
}

func chain(handlers ...fiber.Handler) []fiber.Handler {
	out := make([]fiber.Handler, 0, len(handlers))
	for _, h := range handlers {
		if h != nil {
			out = append(out, h)
		}
	}
	return out
}
