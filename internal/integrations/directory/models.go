package directory

// Professional специалист из справочника
type Professional struct {
	ID           int64    `json:"id"`
	FullName     string   `json:"full_name"`
	Specialty    string   `json:"specialty"`
	ServiceTypes []string `json:"service_types"`
	Active       bool     `json:"active"`
}

// Provides сообщает, оказывает ли специалист услугу данного типа.
// Пустой список означает любые услуги.
func (p *Professional) Provides(serviceType string) bool {
	if serviceType == "" || len(p.ServiceTypes) == 0 {
		return true
	}
	for _, st := range p.ServiceTypes {
		if st == serviceType {
			return true
		}
	}
	return false
}

// ErrorResponse модель ошибки от Directory service
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
