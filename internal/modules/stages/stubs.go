package stages

// Stub corpus used by the OCR, classification, and extraction engines. A real
// deployment swaps these for actual OCR/ML backends behind the same Stage
// implementations.

var stubOCRTexts = []string{
	"FACTURA\nNúmero: F-2024-00142\nFecha: 15/01/2024\nEmisor: Empresa ABC S.L.\nCIF: B12345678\nImporte total: 1.250,00 EUR",
	"DOCUMENTO NACIONAL DE IDENTIDAD\nNombre: Juan García López\nNúmero: 12345678Z\nFecha de nacimiento: 15/03/1985\nFecha de expedición: 01/06/2020",
	"NÓMINA\nEmpresa: TechCorp S.A.\nTrabajador: María Fernández\nPeriodo: Enero 2024\nSalario bruto: 3.200,00 EUR\nSalario neto: 2.450,00 EUR",
	"RECIBO\nComercio: Supermercado XYZ\nFecha: 20/01/2024\nTotal: 47,85 EUR\nForma de pago: Tarjeta",
	"CONTRATO DE TRABAJO\nEmpresa: InnovateTech S.L.\nTrabajador: Carlos Ruiz\nFecha inicio: 01/02/2024\nTipo: Indefinido",
}

var stubDocTypes = []string{"invoice", "id_card", "payslip", "receipt", "contract"}

var stubExtractions = map[string]map[string]any{
	"invoice": {
		"invoice_number": "F-2024-00142",
		"total_amount":   1250.00,
		"vendor_name":    "Empresa ABC S.L.",
		"date":           "2024-01-15",
	},
	"id_card": {
		"full_name":     "Juan García López",
		"id_number":     "12345678Z",
		"date_of_birth": "1985-03-15",
	},
	"payslip": {
		"company_name":  "TechCorp S.A.",
		"employee_name": "María Fernández",
		"gross_amount":  3200.00,
		"net_amount":    2450.00,
		"period":        "Enero 2024",
	},
	"receipt": {
		"merchant": "Supermercado XYZ",
		"total":    47.85,
		"date":     "2024-01-20",
	},
	"contract": {
		"company":    "InnovateTech S.L.",
		"employee":   "Carlos Ruiz",
		"start_date": "2024-02-01",
		"type":       "Indefinido",
	},
}
