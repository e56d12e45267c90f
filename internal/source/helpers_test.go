package source

import "github.com/aigcpilot/harvester/internal/models"

func itemWith(name, url string) models.DiscoveredItem {
	return models.DiscoveredItem{Name: name, URL: url}
}
