package domain

var Tables = []interface{}{
	// System
	&SysConfig{},
	&MaintTask{},
	// Catalog
	&Category{},
	&Product{},
	// Sales
	&Sale{},
	&SaleItem{},
}
