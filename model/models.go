package model

// All lists every table in migration order.
func All() []interface{} {
	return []interface{}{
		&User{},
		&TokenBlacklist{},
		&AdminAuditLog{},
		&University{},
		&Fee{},
		&Program{},
		&GalleryImage{},
		&Application{},
		&Message{},
		&ContentBlock{},
		&PriceSetting{},
		&SiteSetting{},
		&SiteStats{},
		&Testimonial{},
		&FAQ{},
		&Article{},
		&CronJobLog{},
	}
}
