package routes

import (
	"arkapulsa/controllers/admin"
	"arkapulsa/controllers/callback"
	"arkapulsa/controllers/reseller"
	"arkapulsa/controllers/transaction"
	"arkapulsa/middlewares"

	"github.com/gofiber/fiber/v2"
)

func Setup(app *fiber.App) {
	resellerRoutes := app.Group("/reseller", middlewares.ResellerAuth())
	resellerRoutes.Post("/balance", reseller.CheckBalance)
	resellerRoutes.Post("/mutations", reseller.ListMutations)

	trxRoutes := app.Group("/transaction", middlewares.ResellerAuth())
	trxRoutes.Post("/quote", transaction.Quote)
	trxRoutes.Post("/create", transaction.Create)
	trxRoutes.Post("/detail", transaction.Detail)

	adminRoutes := app.Group("/admin", middlewares.AdminAuth())
	adminRoutes.Post("/reseller/register", reseller.RegisterReseller)
	adminRoutes.Post("/reseller/topup", reseller.TopupSaldo)
	adminRoutes.Post("/transaction/refund", admin.Refund)
	adminRoutes.Post("/transaction/cancel", admin.Cancel)
	adminRoutes.Post("/supplier/update", admin.UpdateSupplier)

	callbackRoutes := app.Group("/callback", middlewares.CallbackAuth())
	callbackRoutes.Post("/supplier", callback.SupplierCallback)
}
