package invoice

import "encoding/xml"

// xmlDocument covers both FacturaElectronica and TiqueteElectronico; the two
// schemas share every element read here. Namespaces are ignored.
type xmlDocument struct {
	XMLName        xml.Name
	Clave          string     `xml:"Clave"`
	FechaEmision   string     `xml:"FechaEmision"`
	Emisor         xmlIssuer  `xml:"Emisor"`
	LineaDetalle   []xmlLine  `xml:"DetalleServicio>LineaDetalle"`
	ResumenFactura xmlSummary `xml:"ResumenFactura"`
}

type xmlIssuer struct {
	Nombre          string       `xml:"Nombre"`
	NombreComercial string       `xml:"NombreComercial"`
	Ubicacion       *xmlLocation `xml:"Ubicacion"`
}

type xmlLocation struct {
	OtrasSenas string `xml:"OtrasSenas"`
}

type xmlLine struct {
	Codigo         []xmlCode `xml:"Codigo"`
	Cantidad       string    `xml:"Cantidad"`
	UnidadMedida   string    `xml:"UnidadMedida"`
	Detalle        string    `xml:"Detalle"`
	PrecioUnitario string    `xml:"PrecioUnitario"`
}

// xmlCode is a <Codigo> entry. Older schema versions nest the code value in
// an inner <Codigo>; a bare text <Codigo> yields an empty value.
type xmlCode struct {
	Codigo string `xml:"Codigo"`
}

type xmlSummary struct {
	TotalComprobante string `xml:"TotalComprobante"`
}
