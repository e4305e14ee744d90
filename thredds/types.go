package thredds

import "encoding/xml"

// Catalog is a parsed THREDDS client catalog.
type Catalog struct {
	URL      string
	Name     string
	Services []Service
	Datasets []Dataset
}

type Service struct {
	Name     string
	Type     string
	Base     string
	Services []Service
}

type Dataset struct {
	Name        string
	ID          string
	URLPath     string
	ServiceName string
	// AccessURLs maps service type (OPENDAP, NetcdfSubset, HTTPServer...) to
	// an absolute URL.
	AccessURLs map[string]string
}

type xmlCatalog struct {
	XMLName  xml.Name     `xml:"catalog"`
	Name     string       `xml:"name,attr"`
	Services []xmlService `xml:"service"`
	Datasets []xmlDataset `xml:"dataset"`
}

type xmlService struct {
	Name     string       `xml:"name,attr"`
	Type     string       `xml:"serviceType,attr"`
	Base     string       `xml:"base,attr"`
	Services []xmlService `xml:"service"`
}

type xmlDataset struct {
	Name        string       `xml:"name,attr"`
	ID          string       `xml:"ID,attr"`
	URLPath     string       `xml:"urlPath,attr"`
	ServiceName string       `xml:"serviceName"`
	Metadata    []xmlMeta    `xml:"metadata"`
	Access      []xmlAccess  `xml:"access"`
	Datasets    []xmlDataset `xml:"dataset"`
}

type xmlMeta struct {
	Inherited   bool   `xml:"inherited,attr"`
	ServiceName string `xml:"serviceName"`
}

type xmlAccess struct {
	ServiceName string `xml:"serviceName,attr"`
	URLPath     string `xml:"urlPath,attr"`
}
