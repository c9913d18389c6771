package query

// ---------- Tipos de paginación ----------

// OffsetPagination para paginación clásica
type OffsetPagination struct {
	Limit  int
	Offset int
}

// FromPage construye la paginación por offset para una página 1-based.
func FromPage(page, limit int) OffsetPagination {
	if page < 1 {
		page = 1
	}
	return OffsetPagination{Limit: limit, Offset: (page - 1) * limit}
}

// TotalPages es ceil(total/limit); 0 cuando no hay resultados.
func TotalPages(total, limit int) int {
	if total <= 0 || limit <= 0 {
		return 0
	}
	return (total + limit - 1) / limit
}
