// Package catalog imports a professional's services from a CSV export.
package catalog

// FallbackCategory names every category id without an entry.
const FallbackCategory = "Outros"

var categories = map[string]string{
	"1":  "Licenciamento Ambiental",
	"2":  "Consultoria Ambiental",
	"3":  "Gestão de Resíduos",
	"4":  "Recursos Hídricos",
	"5":  "Auditoria Ambiental",
	"6":  "Educação Ambiental",
	"7":  "Recuperação de Áreas Degradadas",
	"8":  "Monitoramento Ambiental",
	"9":  "Estudos de Impacto Ambiental",
	"10": "Eficiência Energética",
}

// CategoryName maps a category id of the CSV to its display name.
func CategoryName(id string) string {
	if name, ok := categories[id]; ok {
		return name
	}
	return FallbackCategory
}
