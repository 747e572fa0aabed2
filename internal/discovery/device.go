package discovery

// Device represents a Home Assistant device: the registry object that
// groups multiple entities together. Fields mirror the HA MQTT device
// registry documentation; empty optional fields are omitted from payloads.
type Device struct {
	Identifiers      []string
	Name             string
	Manufacturer     string
	Model            string
	ModelID          string
	SWVersion        string
	HWVersion        string
	SerialNumber     string
	ConfigurationURL string
	SuggestedArea    string
	ViaDevice        string
	Connections      [][2]string
}

// Info renders the device block embedded in every entity config payload.
// Only set fields appear.
func (d Device) Info() map[string]any {
	info := map[string]any{
		"identifiers": d.Identifiers,
		"name":        d.Name,
	}

	optional := map[string]string{
		"manufacturer":      d.Manufacturer,
		"model":             d.Model,
		"model_id":          d.ModelID,
		"sw_version":        d.SWVersion,
		"hw_version":        d.HWVersion,
		"serial_number":     d.SerialNumber,
		"configuration_url": d.ConfigurationURL,
		"suggested_area":    d.SuggestedArea,
		"via_device":        d.ViaDevice,
	}
	for field, value := range optional {
		if value != "" {
			info[field] = value
		}
	}

	if len(d.Connections) > 0 {
		conns := make([][]string, 0, len(d.Connections))
		for _, c := range d.Connections {
			conns = append(conns, []string{c[0], c[1]})
		}
		info["connections"] = conns
	}

	return info
}
