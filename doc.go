// Package serial provides serial port access for Linux and the port
// discovery used by serialpipe.
//
// # Basic Usage
//
// Open a serial port with default configuration (115200 8N1):
//
//	port, err := serial.Open("/dev/ttyUSB0")
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer port.Close()
//
//	n, err := port.Write([]byte("Hello"))
//	buffer := make([]byte, 256)
//	n, err = port.Read(buffer)
//
// # Bounded Reads
//
// Read never blocks longer than the configured read timeout. The three
// non-data results are distinct:
//
//	n, err := port.Read(buffer)
//	switch {
//	case errors.Is(err, serial.ErrReadTimeout):
//	    // nothing arrived, try again
//	case err == io.EOF:
//	    // device reported end of stream
//	case err != nil:
//	    // hard failure, the device is probably gone
//	}
//
// Reads and writes on one Port are serialized by an internal lock taken
// for the duration of a single call. A Read can therefore delay a
// concurrent Write by up to the read timeout.
//
// # Configuration Options
//
//	port, err := serial.Open("/dev/ttyUSB0",
//	    serial.WithBaudRate(9600),
//	    serial.WithReadTimeout(200*time.Millisecond),
//	    serial.WithWriteTimeout(2*time.Second),
//	)
//
// # Port Discovery
//
// List available serial ports and get USB device metadata:
//
//	ports, err := serial.ListPorts()
//	for _, portPath := range ports {
//	    info, _ := serial.GetPortInfo(portPath)
//	    fmt.Printf("%s: %s (VID=%s PID=%s Serial=%s)\n",
//	        info.Path, info.Description, info.VendorID, info.ProductID, info.SerialNumber)
//	}
//
// # USB Device Management
//
// Reset hung USB devices programmatically:
//
//	err := serial.ResetUSBDevice("/dev/ttyUSB0")
//	err = serial.ResetUSBDeviceBySerial("FT123456")
//
// Requires usbreset utility from usbutils package and root/sudo permissions.
//
// # Default Configuration
//
//   - BaudRate: 115200
//   - DataBits: 8
//   - StopBits: 1
//   - Parity: None
//   - ReadTimeout: 100ms
//   - WriteTimeout: 5s
//   - WriteMode: Buffered
package serial
