package i18n

var messages = map[string]map[string]string{
	LocaleEN: {
		"error.bad_request":              "Invalid request",
		"error.unauthorized":             "Please sign in",
		"error.forbidden":                "You do not have access to this resource",
		"error.not_found":                "Not found",
		"error.internal_error":           "Something went wrong, please try again later",
		"error.upstream_failure":         "A partner service is unavailable, please try again later",
		"error.too_many_requests":        "Too many requests, please wait %d seconds",
		"error.conflict":                 "The resource was modified concurrently, please retry",
		"error.login_failed":             "Invalid username or password",
		"error.password_weak":            "Password does not meet the policy",
		"error.password_change_failed":   "Password change failed",
		"error.tour_not_found":           "Tour not found",
		"error.tour_price_missing":       "Price not available for this tour",
		"error.tour_inactive":            "This tour cannot be booked",
		"error.booking_invalid":          "Booking details are incomplete",
		"error.booking_date_required":    "Please choose a date and time",
		"error.checkout_failed":          "Checkout could not be started",
		"error.checkout_inconsistent":    "Checkout was created but could not be recorded, our team has been notified",
		"error.shipping_country":         "We do not ship to this country",
		"error.webshop_item_not_found":   "Product not found",
		"error.cart_empty":               "Your cart is empty",
		"error.cart_session_missing":     "Cart session not found",
		"error.gift_card_not_found":      "Gift card not found",
		"error.gift_card_status":         "Gift card is %s",
		"error.gift_card_empty":          "Gift card has no remaining balance",
		"error.gift_card_expired":        "Gift card has expired",
		"error.gift_card_conflict":       "Gift card balance changed, please try again",
		"error.gift_card_code_exhausted": "Could not generate a unique gift card code",
		"error.gift_card_amount_invalid": "Gift card amount is invalid",
		"error.webhook_signature":        "Webhook signature verification failed",
		"error.reorder_invalid":          "Reorder request does not match the list",
		"error.sync_not_configured":      "Inventory sync is not configured",
		"error.sync_running":             "A catalog sync is already running",
		"error.profile_not_found":        "Profile not found",
		"error.profile_invalid":          "Profile fields are invalid",
		"error.auth_header_missing":      "Authorization header is missing",
		"error.auth_header_invalid":      "Authorization header is malformed",
		"error.token_invalid":            "Session expired, please sign in again",
		"error.password_old_invalid":     "Current password is incorrect",
		"error.role_invalid":             "Role or rule is invalid",
		"error.rate_limit_unavailable":   "Service is temporarily unavailable",
		"error.tour_invalid":             "Tour fields are invalid",
		"error.tour_slug_taken":          "Another tour already uses this slug",
		"error.booking_not_found":        "Booking not found",
		"error.webshop_item_invalid":     "Product fields are invalid",
		"error.gift_card_invalid":        "Gift card cannot be changed in its current state",
		"error.content_not_found":        "Content item not found",
		"error.content_invalid":          "Content item fields are invalid",
		"error.sync_brand_missing":       "No inventory brand is available for the sync",
	},
	LocaleNL: {
		"error.bad_request":              "Ongeldige aanvraag",
		"error.unauthorized":             "Gelieve in te loggen",
		"error.forbidden":                "Je hebt geen toegang tot deze pagina",
		"error.not_found":                "Niet gevonden",
		"error.internal_error":           "Er ging iets mis, probeer het later opnieuw",
		"error.upstream_failure":         "Een externe dienst is niet beschikbaar, probeer het later opnieuw",
		"error.too_many_requests":        "Te veel aanvragen, wacht %d seconden",
		"error.conflict":                 "Gelijktijdig gewijzigd, probeer opnieuw",
		"error.login_failed":             "Ongeldige gebruikersnaam of wachtwoord",
		"error.tour_not_found":           "Tour niet gevonden",
		"error.tour_price_missing":       "Prijs niet beschikbaar voor deze tour",
		"error.tour_inactive":            "Deze tour kan niet geboekt worden",
		"error.booking_invalid":          "Boekingsgegevens zijn onvolledig",
		"error.booking_date_required":    "Kies een datum en uur",
		"error.checkout_failed":          "Afrekenen kon niet gestart worden",
		"error.checkout_inconsistent":    "Betaling aangemaakt maar niet geregistreerd, ons team is verwittigd",
		"error.shipping_country":         "We verzenden niet naar dit land",
		"error.webshop_item_not_found":   "Product niet gevonden",
		"error.cart_empty":               "Je winkelmandje is leeg",
		"error.gift_card_not_found":      "Cadeaubon niet gevonden",
		"error.gift_card_status":         "Cadeaubon is %s",
		"error.gift_card_empty":          "Cadeaubon heeft geen saldo meer",
		"error.gift_card_expired":        "Cadeaubon is verlopen",
		"error.gift_card_conflict":       "Saldo van de cadeaubon is gewijzigd, probeer opnieuw",
		"error.gift_card_code_exhausted": "Kon geen unieke cadeauboncode genereren",
		"error.cart_session_missing":     "Winkelmandje niet gevonden",
		"error.token_invalid":            "Sessie verlopen, gelieve opnieuw in te loggen",
		"error.password_old_invalid":     "Huidig wachtwoord is onjuist",
		"error.booking_not_found":        "Boeking niet gevonden",
		"error.content_not_found":        "Item niet gevonden",
	},
	LocaleFR: {
		"error.bad_request":           "Requête invalide",
		"error.not_found":             "Introuvable",
		"error.internal_error":        "Une erreur est survenue, veuillez réessayer plus tard",
		"error.upstream_failure":      "Un service partenaire est indisponible",
		"error.too_many_requests":     "Trop de requêtes, veuillez patienter %d secondes",
		"error.tour_not_found":        "Visite introuvable",
		"error.tour_price_missing":    "Prix indisponible pour cette visite",
		"error.booking_date_required": "Veuillez choisir une date et une heure",
		"error.gift_card_not_found":   "Carte cadeau introuvable",
		"error.gift_card_status":      "La carte cadeau est %s",
		"error.gift_card_empty":       "La carte cadeau n'a plus de solde",
		"error.gift_card_expired":     "La carte cadeau a expiré",
	},
}
