package apitest

func (b *Backend) setupRoutes() {
	b.app.Use(b.injectFailures)
	b.app.Use(b.dropBodies)

	api := b.app.Group("/api")
	api.Post("/login", b.login)
	api.Post("/register", b.register)
	api.Post("/refreshToken", b.refreshToken)
	api.Post("/logout", b.logout)

	protected := api.Group("", b.requireAuth)
	protected.Get("/users", b.listUsers)
	protected.Put("/users/:id", b.updateBalance)
	protected.Post("/history", b.createHistory)
	protected.Get("/history/:userId", b.listHistory)
	protected.Post("/transaksi", b.createDonation)
	protected.Get("/transaksi", b.listDonations)
	protected.Put("/transaksi/:id", b.updateDonation)
	protected.Delete("/transaksi/:id", b.deleteDonation)
	protected.Put("/editProfile/:id", b.editProfile)
}
